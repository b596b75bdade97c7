// cmd/pideploy/root.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pideploy/internal/config"
	"pideploy/internal/progress"
)

var (
	toolCfg *config.ToolConfig

	// logLevel overrides the configured level when set.
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pideploy",
	Short: "Provision and deploy programs to Raspberry Pi class devices over SSH",
	Long: `pideploy connects to a small ARM Linux device over SSH, installs the
runtime components the target program needs, pushes the locally built
output, and launches it on the device.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal-driven cancellation.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadToolConfig()
	if err != nil {
		return err
	}
	toolCfg = cfg

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func openStore() (*config.Store, error) {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	store := config.NewStore(path)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// newCoordinator picks the spinner surface on a terminal and plain lines
// everywhere else.
func newCoordinator() *progress.Coordinator {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return progress.NewCoordinator(progress.NewTeaReporter())
	}
	return progress.NewCoordinator(progress.NewWriterReporter(os.Stderr))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(connectionCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}
