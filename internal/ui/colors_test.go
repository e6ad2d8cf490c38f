package ui

import (
	"strings"
	"testing"
)

func TestPalette(t *testing.T) {
	t.Run("Plain Renders Text Unchanged", func(t *testing.T) {
		p := Plain()
		if got := p.Title("Status %d", 1); got != "Status 1" {
			t.Errorf("unexpected title %q", got)
		}
		if got := p.OK("logged in"); got != "✓ logged in" {
			t.Errorf("unexpected ok line %q", got)
		}
		if got := p.Err("failed"); got != "✗ failed" {
			t.Errorf("unexpected err line %q", got)
		}
	})

	t.Run("Styled Output Keeps Text", func(t *testing.T) {
		if got := Default.Warn("careful"); !strings.Contains(got, "careful") {
			t.Errorf("styled output lost its text: %q", got)
		}
		if got := Default.Help("run sonar login"); !strings.Contains(got, "run sonar login") {
			t.Errorf("styled output lost its text: %q", got)
		}
	})
}
