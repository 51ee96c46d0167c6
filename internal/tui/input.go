package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 256

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// insertText appends pasted text, dropping control characters and
// whatever would exceed maxInputLen.
func insertText(text, pasted string) string {
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	for _, r := range pasted {
		if room == 0 {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		room--
	}
	return b.String()
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderField renders one labelled form input with a cursor when focused.
func renderField(label, value, placeholder string, focused, mask bool) string {
	shown := value
	if mask {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	prompt := dimStyle.Render(label)
	if focused {
		prompt = inputPromptStyle.Render(label)
	}
	body := normalStyle.Render(shown)
	if value == "" {
		body = inputPlaceholderStyle.Render(placeholder)
	}
	if focused {
		body += accentStyle.Render("█")
	}
	return "  " + prompt + " " + body
}
