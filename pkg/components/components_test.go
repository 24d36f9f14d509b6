package components

import (
	"testing"

	"github.com/loomkit/willow/pkg/vango/vdom"
)

func TestJoinClasses_SkipsEmpty(t *testing.T) {
	got := joinClasses("a", "", "b", "")
	if got != "a b" {
		t.Errorf("joinClasses() = %q, want %q", got, "a b")
	}
}

func TestButton_DisabledHasNoClickHandler(t *testing.T) {
	n := Button(ButtonProps{
		Text:     "go",
		Disabled: true,
		OnClick:  func(any) []vdom.Edit { return nil },
	})
	if len(n.Events) != 0 {
		t.Errorf("disabled button must not bind a click handler, got %v", n.Events)
	}
}

func TestButton_EnabledBindsClick(t *testing.T) {
	n := Button(ButtonProps{Text: "go", OnClick: func(any) []vdom.Edit { return nil }})
	if _, ok := n.Events["click"]; !ok {
		t.Error("expected a bound click handler")
	}
}

func TestModal_ClosedRealizesEmpty(t *testing.T) {
	n := Modal(ModalProps{IsOpen: false, Title: "Hi"})
	if !n.IsEmpty() {
		t.Errorf("closed modal = %+v, want Empty", n)
	}
}

func TestModal_OpenHasTitle(t *testing.T) {
	n := Modal(ModalProps{IsOpen: true, Title: "Hi"})
	if n.IsEmpty() {
		t.Fatal("open modal should not be Empty")
	}
	// overlay > dialog > header > h1 > text
	title := vdom.RenderOne(n).Children[0].Children[0].Children[0]
	if title.Tag != "h1" || len(title.Children) != 1 || title.Children[0].Text != "Hi" {
		t.Errorf("modal title = %+v, want h1 with text Hi", title)
	}
}

func TestCard_FooterOmittedWhenZeroValue(t *testing.T) {
	n := Card(CardProps{Title: "T", Content: vdom.Text("body")})
	realized := vdom.RenderOne(n)
	if len(realized.Children) != 2 {
		t.Fatalf("card children = %+v, want header and body only", realized.Children)
	}
	for _, c := range realized.Children {
		if c.Attrs["class"] == "card-footer" {
			t.Errorf("expected no footer, got %+v", c)
		}
	}
}
