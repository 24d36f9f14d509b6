package components

import "github.com/loomkit/willow/pkg/vango/vdom"

// CardProps configures Card.
type CardProps struct {
	Title     string
	Subtitle  string
	Content   vdom.Node
	Footer    vdom.Node
	Hoverable bool
	Clickable bool
	OnClick   vdom.Handler
	Class     string
	ID        string
	Bordered  bool
	Shadow    string // "none", "sm", "md", "lg", "xl"
}

// Card builds a titled content container.
func Card(props CardProps) vdom.Node {
	classes := []string{"card"}
	if props.Hoverable {
		classes = append(classes, "card-hoverable")
	}
	if props.Clickable {
		classes = append(classes, "card-clickable")
	}
	if props.Bordered {
		classes = append(classes, "card-bordered")
	}
	switch {
	case props.Shadow != "" && props.Shadow != "none":
		classes = append(classes, "card-shadow-"+props.Shadow)
	case props.Shadow == "":
		classes = append(classes, "card-shadow-md")
	}
	classes = append(classes, props.Class)

	a := map[string]string{"class": joinClasses(classes...)}
	if props.ID != "" {
		a["id"] = props.ID
	}

	var events map[string]vdom.Handler
	if props.Clickable && props.OnClick != nil {
		events = map[string]vdom.Handler{"click": props.OnClick}
	}

	var header vdom.Node = vdom.Empty()
	if props.Title != "" || props.Subtitle != "" {
		header = vdom.Div(map[string]string{"class": "card-header"}, nil,
			vdom.El("h3", map[string]string{"class": "card-title"}, nil, vdom.Text(props.Title)),
			vdom.El("p", map[string]string{"class": "card-subtitle"}, nil, vdom.Text(props.Subtitle)),
		)
	}

	var footer vdom.Node = vdom.Empty()
	if !props.Footer.IsEmpty() {
		footer = vdom.Div(map[string]string{"class": "card-footer"}, nil, props.Footer)
	}

	return vdom.Div(a, events,
		header,
		vdom.Div(map[string]string{"class": "card-body"}, nil, props.Content),
		footer,
	)
}
