package components

import (
	"fmt"

	"github.com/loomkit/willow/pkg/vango/vdom"
)

// ButtonVariant is the visual style of a Button.
type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonDanger    ButtonVariant = "danger"
	ButtonSuccess   ButtonVariant = "success"
	ButtonWarning   ButtonVariant = "warning"
	ButtonGhost     ButtonVariant = "ghost"
)

// ButtonSize is the size of a Button.
type ButtonSize string

const (
	ButtonSmall  ButtonSize = "small"
	ButtonMedium ButtonSize = "medium"
	ButtonLarge  ButtonSize = "large"
)

// ButtonProps configures Button.
type ButtonProps struct {
	Text     string
	Variant  ButtonVariant
	Size     ButtonSize
	Disabled bool
	Loading  bool
	OnClick  vdom.Handler
	Class    string
	ID       string
}

// Button builds a styled button node.
func Button(props ButtonProps) vdom.Node {
	if props.Variant == "" {
		props.Variant = ButtonPrimary
	}
	if props.Size == "" {
		props.Size = ButtonMedium
	}

	classes := []string{"btn", fmt.Sprintf("btn-%s", props.Variant), fmt.Sprintf("btn-%s", props.Size)}
	if props.Disabled || props.Loading {
		classes = append(classes, "btn-disabled")
	}
	classes = append(classes, props.Class)

	a := map[string]string{"class": joinClasses(classes...)}
	if props.ID != "" {
		a["id"] = props.ID
	}
	if props.Disabled || props.Loading {
		a["disabled"] = "true"
	}

	var events map[string]vdom.Handler
	if props.OnClick != nil && !props.Disabled && !props.Loading {
		events = map[string]vdom.Handler{"click": props.OnClick}
	}

	label := props.Text
	if props.Loading {
		label = "Loading…"
	}

	return vdom.Button(a, events, vdom.Text(label))
}
