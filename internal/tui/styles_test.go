package tui

import (
	"strings"
	"testing"
)

func TestActionStyleKnownAction(t *testing.T) {
	for _, action := range []string{"warn", "timeout", "kick", "ban", "unban"} {
		t.Run(action, func(t *testing.T) {
			rendered := ActionStyle(action).Render(action)
			if !strings.Contains(rendered, action) {
				t.Errorf("ActionStyle(%q).Render = %q, want to contain %q", action, rendered, action)
			}
		})
	}
}

func TestActionStyleUnknownFallback(t *testing.T) {
	rendered := ActionStyle("softban").Render("softban")
	if !strings.Contains(rendered, "softban") {
		t.Errorf("ActionStyle fallback did not render text: %q", rendered)
	}
}

func TestOnOff(t *testing.T) {
	if got := onOff(true); !strings.Contains(got, "on") {
		t.Errorf("onOff(true) = %q", got)
	}
	if got := onOff(false); !strings.Contains(got, "off") {
		t.Errorf("onOff(false) = %q", got)
	}
}

func TestHelpEntryFormat(t *testing.T) {
	got := helpEntry("q", "quit")
	if !strings.Contains(got, "q") || !strings.Contains(got, "quit") {
		t.Errorf("helpEntry = %q, want key and label", got)
	}
}

func TestHelpBarJoinsEntries(t *testing.T) {
	got := helpBar([2]string{"j/k", "nav"}, [2]string{"q", "quit"})
	for _, want := range []string{"j/k", "nav", "q", "quit"} {
		if !strings.Contains(got, want) {
			t.Errorf("helpBar = %q, missing %q", got, want)
		}
	}
}

func TestShimmerLogoContainsLetters(t *testing.T) {
	for _, frame := range []int{0, 17, 500} {
		got := renderShimmerLogo(frame)
		for _, r := range "RULEKEEPER" {
			if !strings.ContainsRune(got, r) {
				t.Errorf("frame %d: logo missing %q", frame, r)
			}
		}
	}
}
