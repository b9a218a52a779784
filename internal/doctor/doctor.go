package doctor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"hashortcuts/internal/config"
	"hashortcuts/internal/control"
	"hashortcuts/internal/hotkey"
)

const pingTimeout = 5 * time.Second

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Options tunes the checks. All fields are optional.
type Options struct {
	Client     *http.Client
	SocketPath string // empty skips the background listener check
	Backend    string
	// CheckHotkey validates one combo for Backend; nil falls back to the
	// bracketed-combo syntax check.
	CheckHotkey func(combo string) error
}

// Run executes doctor checks.
func Run(ctx context.Context, cfg *config.Config, opts Options) []Result {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: pingTimeout}
	}
	check := opts.CheckHotkey
	if check == nil {
		check = parseCombo
	}
	results := []Result{
		checkFile("config path", cfg.Path),
		checkBaseURL(cfg.Server.BaseURL),
		checkToken(cfg.Server.Token),
		checkHotkeys(cfg.Shortcuts, opts.Backend, check),
	}
	if runtime.GOOS == "linux" {
		results = append(results, checkDisplay())
	}
	results = append(results, checkAPI(ctx, client, cfg.Server))
	if opts.SocketPath != "" {
		results = append(results, checkListener(opts.SocketPath))
	}
	return results
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(path); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkBaseURL(raw string) Result {
	label := "base_url"
	u, err := url.Parse(raw)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Result{Name: label, Pass: false, Detail: "scheme must be http or https"}
	}
	if u.Host == "" {
		return Result{Name: label, Pass: false, Detail: "missing host"}
	}
	return Result{Name: label, Pass: true, Detail: raw}
}

func checkToken(token string) Result {
	if strings.TrimSpace(token) == "" {
		return Result{Name: "token", Pass: false, Detail: "empty"}
	}
	return Result{Name: "token", Pass: true, Detail: fmt.Sprintf("%d chars", len(token))}
}

// checkHotkeys runs every configured combination through check.
func checkHotkeys(shortcuts []config.Shortcut, backend string, check func(string) error) Result {
	label := "hotkeys"
	n := 0
	for _, sc := range shortcuts {
		if sc.Hotkey == "" {
			continue
		}
		if err := check(sc.Hotkey); err != nil {
			return Result{Name: label, Pass: false, Detail: fmt.Sprintf("%s: %v", sc.Name, err)}
		}
		n++
	}
	detail := fmt.Sprintf("%d bound", n)
	if backend != "" {
		detail += " (" + backend + ")"
	}
	return Result{Name: label, Pass: true, Detail: detail}
}

func parseCombo(combo string) error {
	bracketed, err := hotkey.ToPynputCombo(combo)
	if err != nil {
		return err
	}
	_, err = hotkey.ParseCombo(bracketed)
	return err
}

// Both backends need an X server on linux.
func checkDisplay() Result {
	if d := os.Getenv("DISPLAY"); d != "" {
		return Result{Name: "display", Pass: true, Detail: d}
	}
	return Result{Name: "display", Pass: false, Detail: "DISPLAY not set; hotkeys need an X session"}
}

// checkAPI calls GET /api/, which answers 200 for a valid token.
func checkAPI(ctx context.Context, client *http.Client, srv config.Server) Result {
	label := "api"
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(srv.BaseURL, "/")+"/api/", nil)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+srv.Token)
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Result{Name: label, Pass: false, Detail: "token rejected (401)"}
	case resp.StatusCode >= 300:
		return Result{Name: label, Pass: false, Detail: resp.Status}
	}
	return Result{Name: label, Pass: true, Detail: resp.Status}
}

// checkListener pings a background listener if its socket exists.
func checkListener(socketPath string) Result {
	label := "listener"
	if _, err := os.Stat(socketPath); err != nil {
		return Result{Name: label, Pass: true, Detail: "not running"}
	}
	if err := control.Health(socketPath); err != nil {
		return Result{Name: label, Pass: false, Detail: "stale socket: " + err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: "responding on " + socketPath}
}
