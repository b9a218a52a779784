package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%sha-shortcuts%s: Home Assistant shortcuts on the command line and global hotkeys %s(v%s)%s\n\n", boldBlue, reset, dim, cmd.Version, reset)

		write("%sUsage%s\n", bold, reset)
		write("  ha-shortcuts [flags]\n\n")

		write("%sModes%s\n", bold, reset)
		writeln("  --list                      print configured shortcuts")
		writeln("  -t, --trigger NAME          call one shortcut and print the result")
		writeln("  --listen                    listen for hotkeys (default when no mode is given)")
		writeln("  --background | --stop       detached listener lifecycle")
		writeln("  --status                    pid, uptime and recent firings")
		writeln("  --tail-log [--follow]       show the background log")
		writeln("  --doctor                    check config, display and API")
		writeln("")

		write("%sEnv%s\n", bold, reset)
		writeln("  HA_SHORTCUTS_CONFIG, HA_SHORTCUTS_STATE_DIR, HA_SHORTCUTS_METRICS_ADDR,")
		writeln("  HA_SHORTCUTS_LOG_LEVEL=debug, HA_SHORTCUTS_LOG_FORMAT=json")
		writeln("")

		write("%sExamples%s\n", bold, reset)
		writeln(cmd.Example)
		writeln("")

		write("%sFlags%s\n", bold, reset)
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			name := "--" + f.Name
			if f.Shorthand != "" {
				name = "-" + f.Shorthand + ", " + name
			}
			write("  %s%-20s%s %s\n", green, name, reset, f.Usage)
		})
	})
}
