// Package cli implements the ha-shortcuts command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"hashortcuts/internal/action"
	"hashortcuts/internal/backend"
	"hashortcuts/internal/config"
	"hashortcuts/internal/control"
	"hashortcuts/internal/daemon"
	"hashortcuts/internal/doctor"
	"hashortcuts/internal/logging"
	"hashortcuts/internal/run"

	"github.com/spf13/cobra"
)

const tailLines = 50

type options struct {
	configPath  string
	trigger     string
	backend     string
	metricsAddr string
	logLevel    string

	list       bool
	listen     bool
	background bool
	stop       bool
	status     bool
	tailLog    bool
	follow     bool
	doctor     bool
}

// NewRootCmd builds the single flag-driven command.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "ha-shortcuts",
		Short: "Run Home Assistant REST shortcuts from the command line or global hotkeys",
		Example: `  ha-shortcuts --list
  ha-shortcuts -t "Desk lamp"
  ha-shortcuts --listen --backend pynput
  ha-shortcuts --background --metrics-addr 127.0.0.1:9318
  ha-shortcuts --tail-log --follow
  ha-shortcuts --stop`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	root.Version = version
	root.SetVersionTemplate("ha-shortcuts v{{.Version}}\n")
	root.CompletionOptions.DisableDefaultCmd = true

	f := root.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (YAML, JSON or TOML). Defaults to config.yaml next to the executable")
	f.BoolVar(&opts.list, "list", false, "List configured shortcuts")
	f.StringVarP(&opts.trigger, "trigger", "t", "", "Trigger the shortcut with this name once")
	f.BoolVar(&opts.listen, "listen", false, "Listen for global hotkeys")
	f.StringVar(&opts.backend, "backend", backend.Default, "Hotkey backend: keyboard or pynput")
	f.BoolVar(&opts.background, "background", false, "Start the hotkey listener as a background process")
	f.BoolVar(&opts.stop, "stop", false, "Stop the background listener")
	f.BoolVar(&opts.status, "status", false, "Show background listener status")
	f.BoolVar(&opts.tailLog, "tail-log", false, "Show the last lines of the background log")
	f.BoolVar(&opts.follow, "follow", false, "With --tail-log, keep streaming new lines")
	f.BoolVar(&opts.doctor, "doctor", false, "Check config, display and Home Assistant reachability")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while listening")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	applyColorHelp(root)
	return root
}

func execute(ctx context.Context, out io.Writer, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	paths := daemon.DefaultPaths()

	switch {
	case opts.stop:
		m, err := newManager(paths, out, opts)
		if err != nil {
			return err
		}
		return m.Stop()
	case opts.status:
		return showStatus(out, paths, opts)
	case opts.tailLog:
		if opts.follow {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return control.FollowFile(ctx, out, paths.Log)
		}
		return control.TailFile(out, paths.Log, tailLines)
	case opts.background:
		return startBackground(out, paths, opts)
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = opts.metricsAddr
	}
	logger, err := logging.Configure(cfg)
	if err != nil {
		return err
	}

	if opts.doctor {
		return runDoctor(ctx, out, cfg, doctor.Options{
			SocketPath:  paths.Socket,
			Backend:     opts.backend,
			CheckHotkey: func(combo string) error { return backend.CheckCombo(opts.backend, combo) },
		})
	}
	if opts.list {
		printShortcuts(out, cfg)
	}
	if opts.trigger != "" {
		sc, ok := cfg.Lookup(opts.trigger)
		if !ok {
			return fmt.Errorf("shortcut '%s' not found", opts.trigger)
		}
		// Call failures are printed by the runner and do not change the exit code.
		_, _ = action.NewRunner(out, logger).Trigger(ctx, cfg.Server, sc, action.SourceCLI)
		return nil
	}
	if opts.list && !opts.listen {
		return nil
	}

	provider, err := backend.New(opts.backend)
	if err != nil {
		return err
	}
	return run.Serve(ctx, cfg, provider, run.Options{
		Backend:    opts.backend,
		SocketPath: paths.Socket,
		Out:        out,
	}, logger)
}

func newManager(paths daemon.Paths, out io.Writer, opts *options) (*daemon.Manager, error) {
	level := opts.logLevel
	if level == "" {
		level = "info"
	}
	return daemon.NewManager(paths, out, logging.New(level))
}

func startBackground(out io.Writer, paths daemon.Paths, opts *options) error {
	if !backend.Valid(opts.backend) {
		_, err := backend.New(opts.backend)
		return err
	}
	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	var extra []string
	if opts.metricsAddr != "" {
		extra = append(extra, "--metrics-addr", opts.metricsAddr)
	}
	if opts.logLevel != "" {
		extra = append(extra, "--log-level", opts.logLevel)
	}
	m, err := newManager(paths, out, opts)
	if err != nil {
		return err
	}
	return m.Start(daemon.StartOptions{
		ConfigPath: cfgPath,
		Backend:    opts.backend,
		ExtraArgs:  extra,
	})
}

func showStatus(out io.Writer, paths daemon.Paths, opts *options) error {
	m, err := newManager(paths, out, opts)
	if err != nil {
		return err
	}
	pid, alive, err := m.Status()
	if errors.Is(err, daemon.ErrNotRunning) {
		fmt.Fprintln(out, "Not running")
		return nil
	}
	if err != nil {
		return err
	}
	if !alive {
		fmt.Fprintf(out, "Not running (stale pid file for %d)\n", pid)
		return nil
	}
	fmt.Fprintf(out, "Running (pid %d)\n", pid)
	status, err := control.QueryStatus(paths.Socket)
	if err != nil {
		fmt.Fprintf(out, "control socket unavailable: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "backend: %s\nhotkeys: %d\nuptime: %.1fs\n", status.Backend, status.Hotkeys, status.UptimeSec)
	for _, f := range status.Firings {
		result := "ok"
		if !f.OK {
			result = "fail"
		}
		if f.Error != "" {
			result = "error " + f.Error
		}
		fmt.Fprintf(out, "%s  %s: %s (%d, %dms)\n", f.Timestamp.Format("15:04:05"), f.Shortcut, result, f.StatusCode, f.ElapsedMS)
	}
	return nil
}

func printShortcuts(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Configured shortcuts:")
	for _, sc := range cfg.Shortcuts {
		fmt.Fprintf(out, " - %s\n", sc.Format())
	}
}

func runDoctor(ctx context.Context, out io.Writer, cfg *config.Config, dopts doctor.Options) error {
	failed := false
	for _, r := range doctor.Run(ctx, cfg, dopts) {
		status := "ok"
		if !r.Pass {
			status = "fail"
			failed = true
		}
		fmt.Fprintf(out, "%-12s %-4s %s\n", r.Name, status, r.Detail)
	}
	if failed {
		return fmt.Errorf("doctor found issues")
	}
	return nil
}
