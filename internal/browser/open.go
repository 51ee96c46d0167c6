package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open opens an http or https URL in the user's default browser.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("browser: refusing to open %q URL", u.Scheme)
	}
	name, args, err := command(runtime.GOOS, u.String())
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

func command(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
