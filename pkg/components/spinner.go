package components

import "github.com/loomkit/willow/pkg/vango/vdom"

// SpinnerProps configures LoadingSpinner.
type SpinnerProps struct {
	Size  string // "small", "medium", "large"
	Text  string
	Class string
}

// LoadingSpinner builds a small loading indicator.
func LoadingSpinner(props SpinnerProps) vdom.Node {
	if props.Size == "" {
		props.Size = "medium"
	}

	classes := joinClasses("spinner", "spinner-"+props.Size, props.Class)

	var label vdom.Node = vdom.Empty()
	if props.Text != "" {
		label = vdom.Span(map[string]string{"class": "spinner-text"}, nil, vdom.Text(props.Text))
	}

	return vdom.Span(map[string]string{"class": classes, "role": "status", "aria-live": "polite"}, nil, label)
}
