package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pipesh/core/logger"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore recorded session logs.",
}

// listCommand prints the names of recorded session logs.
var listCommand = &cobra.Command{
	Use:   "list",
	Short: "List recorded session logs.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		names, err := configuration.SessionLogNames()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// catCommand prints the events of one session log in a readable form.
var catCommand = &cobra.Command{
	Use:   "cat NAME",
	Short: "Print the events of a recorded session log.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := configuration.OpenSessionLog(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		return logger.ReadJSONLinesLog(fd, func(le *logger.LogEntry) {
			stamp := time.UnixMicro(le.TimestampMicros).Format(time.RFC3339)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", stamp, describeEntry(le))
		})
	},
}

func describeEntry(le *logger.LogEntry) string {
	switch {
	case le.CommandRun != nil:
		suffix := ""
		if le.CommandRun.Background {
			suffix = " &"
		}
		return fmt.Sprintf("run: %s%s", strings.Join(le.CommandRun.Tokens, " "), suffix)

	case le.JobFinished != nil:
		if le.JobFinished.Signaled {
			return fmt.Sprintf("job %d killed by signal", le.JobFinished.Pgid)
		}
		return fmt.Sprintf("job %d exited with status %d", le.JobFinished.Pgid, le.JobFinished.Status)

	case le.TimeoutFired != nil:
		return fmt.Sprintf("job %d timed out after %d seconds", le.TimeoutFired.Pgid, le.TimeoutFired.Seconds)

	case le.BackgroundStarted != nil:
		return fmt.Sprintf("background process %d started", le.BackgroundStarted.Pid)

	case le.InvalidPipeline != nil:
		return fmt.Sprintf("rejected: %s (%s)", strings.Join(le.InvalidPipeline.Tokens, " "), le.InvalidPipeline.Error)

	default:
		return "unknown event"
	}
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(listCommand)
	logsCmd.AddCommand(catCommand)
}
