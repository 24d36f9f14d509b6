package components

import "github.com/loomkit/willow/pkg/vango/vdom"

// ModalProps configures Modal.
type ModalProps struct {
	Title        string
	Content      vdom.Node
	Footer       vdom.Node
	IsOpen       bool
	OnClose      vdom.Handler
	Size         string // "sm", "md", "lg", "xl", "full"
	CloseOnClick bool
	Class        string
	ID           string
}

// Modal builds an overlay dialog. It realizes to Empty when IsOpen is
// false, so mounting it unconditionally in a View is always safe.
func Modal(props ModalProps) vdom.Node {
	if !props.IsOpen {
		return vdom.Empty()
	}
	if props.Size == "" {
		props.Size = "md"
	}

	overlayEvents := map[string]vdom.Handler{}
	if props.CloseOnClick && props.OnClose != nil {
		overlayEvents["click"] = props.OnClose
	}
	if len(overlayEvents) == 0 {
		overlayEvents = nil
	}

	var header vdom.Node = vdom.Empty()
	if props.Title != "" {
		closeButton := vdom.Empty()
		if props.OnClose != nil {
			closeButton = Button(ButtonProps{Text: "×", Variant: ButtonGhost, Size: ButtonSmall, OnClick: props.OnClose})
		}
		header = vdom.Div(map[string]string{"class": "modal-header"}, nil,
			vdom.H1(map[string]string{"class": "modal-title"}, nil, vdom.Text(props.Title)),
			closeButton,
		)
	}

	var footer vdom.Node = vdom.Empty()
	if !props.Footer.IsEmpty() {
		footer = vdom.Div(map[string]string{"class": "modal-footer"}, nil, props.Footer)
	}

	a := map[string]string{"class": joinClasses("modal", "modal-"+props.Size, props.Class)}
	if props.ID != "" {
		a["id"] = props.ID
	}

	dialog := vdom.Div(a, nil,
		header,
		vdom.Div(map[string]string{"class": "modal-body"}, nil, props.Content),
		footer,
	)

	return vdom.Div(map[string]string{"class": "modal-overlay"}, overlayEvents, dialog)
}
