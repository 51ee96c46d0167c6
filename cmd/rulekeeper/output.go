package main

import (
	"fmt"
	"io"
)

// ANSI color constants for plain command output (no lipgloss, runs outside the TUI).
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiBlurp = "\033[38;2;88;101;242m"  // #5865f2
	ansiLilac = "\033[38;2;148;156;247m" // #949cf7
	ansiGreen = "\033[38;2;87;242;135m"  // #57f287
	ansiSlate = "\033[38;2;136;144;160m" // #8890a0
)

// printLogo prints the spaced RULEKEEPER wordmark in alternating blues.
func printLogo(w io.Writer) {
	letters := "RULEKEEPER"
	colors := [2]string{ansiBlurp, ansiLilac}
	fmt.Fprint(w, "\n  ")
	for i, ch := range letters {
		fmt.Fprintf(w, "%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprintln(w)
}

// printSignedIn confirms a finished sign-in.
func printSignedIn(w io.Writer, username string) {
	printLogo(w)
	if username == "" {
		fmt.Fprintf(w, "\n  %s%s✓%s signed in\n", ansiGreen, ansiBold, ansiReset)
	} else {
		fmt.Fprintf(w, "\n  %s%s✓%s signed in as %s%s%s\n", ansiGreen, ansiBold, ansiReset, ansiBold, username, ansiReset)
	}
	fmt.Fprintf(w, "  %sRun rulekeeper to open the dashboard.%s\n\n", ansiSlate, ansiReset)
}
