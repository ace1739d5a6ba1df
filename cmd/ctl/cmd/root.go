package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jpfielding/scramble.go/pkg/logging"
	"github.com/spf13/cobra"
)

// ErrInput marks bad arguments or answers from the user.
var ErrInput = errors.New("input error")

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	var logFile io.WriteCloser
	cmd := &cobra.Command{
		Use:   "scramblectl [image]",
		Short: "scramble and restore image pixels with a numeric salt",
		Long: "Shuffles every pixel of an image using a permutation derived from a salt. " +
			"Given an image path with no subcommand it asks whether to encode (e) or decode (d) and for the salt.",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			logPath, _ := cmd.Flags().GetString("log-file")

			// Parse log level
			var level slog.Level
			levelErr := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
			if levelErr != nil {
				level = slog.LevelInfo
			}
			var w io.Writer = cmd.ErrOrStderr()
			if logPath != "" {
				logFile = logging.RotatingFile(logPath, 10, 3)
				w = io.MultiWriter(w, logFile)
			}
			slog.SetDefault(logging.Logger(w, logFormat == "json", level))

			if levelErr != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", levelErr)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printCommandTree(cmd.ErrOrStderr(), cmd, 0)
				return fmt.Errorf("%w: no image path given", ErrInput)
			}
			return runInteractive(ctx, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewScrambleCmd(ctx),
		NewUnscrambleCmd(ctx),
		NewKeyCmd(ctx),
		NewAnalyzeCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-format", "text", "Log format (text|json)")
	pf.String("log-file", "", "Also write logs to this file, rotated at 10MB")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}

// parseSeed accepts a base-10 unsigned 32-bit salt.
func parseSeed(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: salt %q is not an integer in [0, %d]", ErrInput, s, uint32(1<<32-1))
	}
	return uint32(v), nil
}

// checkCtx reports a cancelled run before anything is written.
func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}
