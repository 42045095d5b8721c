package components

import (
	"strings"
	"testing"
)

func TestHelpBar_View(t *testing.T) {
	view := NewHelpBar(KeyBinding{Key: "q", Desc: "quit"}, KeyBinding{Key: "r", Desc: "reload"}).View()
	for _, want := range []string{"q", ":quit", "r", ":reload"} {
		if !strings.Contains(view, want) {
			t.Errorf("help bar %q missing %q", view, want)
		}
	}
}

func TestControlBar_View(t *testing.T) {
	view := NewControlBar(
		ControlItem{Key: "e", Label: "edit", Enabled: true},
		ControlItem{Key: "d", Label: "delete"},
		ControlItem{Key: "w", Label: "download", Enabled: true, Pending: true},
	).View()

	for _, want := range []string{"[e] edit", "[d] delete", "[w] download…"} {
		if !strings.Contains(view, want) {
			t.Errorf("control bar %q missing %q", view, want)
		}
	}
}

func TestProgress_View(t *testing.T) {
	if view := NewProgress(0, 0, 10).View(); view != "" {
		t.Errorf("empty progress should render nothing, got %q", view)
	}

	view := NewProgress(4, 1, 8).View()
	if !strings.Contains(view, "1/4") {
		t.Errorf("progress %q missing count", view)
	}
	if got := strings.Count(view, "━"); got != 8 {
		t.Errorf("expected 8 bar cells, got %d", got)
	}

	if view := NewProgress(2, 5, 4).View(); strings.Count(view, "━") != 4 {
		t.Errorf("overfull progress should clamp, got %q", view)
	}
}
