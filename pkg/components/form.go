package components

import "github.com/loomkit/willow/pkg/vango/vdom"

// InputProps configures Input.
type InputProps struct {
	Type        string // "text", "email", "password", "number", "tel", "url", "search"
	Name        string
	Value       string
	Placeholder string
	Label       string
	HelperText  string
	ErrorText   string
	Required    bool
	Disabled    bool
	// OnInput is typically built with a mount's OnArg so the callback runs
	// through the Elm loop: OnArg(func(v any) any { return SetName(v) }).
	OnInput vdom.Handler
	Class   string
	ID      string
}

// Input builds a labeled form field with optional helper/error text.
func Input(props InputProps) vdom.Node {
	if props.Type == "" {
		props.Type = "text"
	}

	inputID := props.ID
	if inputID == "" && props.Name != "" {
		inputID = "input-" + props.Name
	}

	containerClasses := []string{"form-field"}
	if props.ErrorText != "" {
		containerClasses = append(containerClasses, "form-field-error")
	}
	if props.Disabled {
		containerClasses = append(containerClasses, "form-field-disabled")
	}
	containerClasses = append(containerClasses, props.Class)

	var label vdom.Node = vdom.Empty()
	if props.Label != "" {
		label = vdom.Label(map[string]string{"class": "form-label", "for": inputID}, nil, vdom.Text(props.Label))
	}

	inputAttrs := map[string]string{
		"type":        props.Type,
		"class":       "form-input",
		"name":        props.Name,
		"value":       props.Value,
		"placeholder": props.Placeholder,
	}
	if inputID != "" {
		inputAttrs["id"] = inputID
	}
	if props.Required {
		inputAttrs["required"] = "true"
	}
	if props.Disabled {
		inputAttrs["disabled"] = "true"
	}

	var events map[string]vdom.Handler
	if props.OnInput != nil {
		events = map[string]vdom.Handler{"input": props.OnInput}
	}

	var helper vdom.Node = vdom.Empty()
	switch {
	case props.ErrorText != "":
		helper = vdom.P(map[string]string{"class": "form-error-text"}, nil, vdom.Text(props.ErrorText))
	case props.HelperText != "":
		helper = vdom.P(map[string]string{"class": "form-helper-text"}, nil, vdom.Text(props.HelperText))
	}

	return vdom.Div(map[string]string{"class": joinClasses(containerClasses...)}, nil,
		label,
		vdom.Input(inputAttrs, events),
		helper,
	)
}
