// cmd/pideploy/probe.go

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"pideploy/internal/probe"
	"pideploy/internal/sshx"
)

var probeCmd = &cobra.Command{
	Use:   "probe [user@host]",
	Short: "Connect to a device and print its state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		info, err := resolveConnection(store, name)
		if err != nil {
			return err
		}

		manager := sshx.NewManager(store, slog.Default())
		manager.SetTimeout(toolCfg.ConnectTimeout)
		sess, err := manager.Connect(cmd.Context(), info)
		if err != nil {
			return err
		}
		defer sess.Close()

		status, err := probe.NewProber(slog.Default()).Probe(cmd.Context(), sess)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Device:        %s\n", sess.Name())
		fmt.Fprintf(out, "Board:         %s (revision %s)\n", status.BoardModel, status.BoardRevision)
		fmt.Fprintf(out, "Processor:     %s (%s)\n", status.Processor, status.Architecture)
		fmt.Fprintf(out, "Supported:     %t\n", status.Supported)
		fmt.Fprintf(out, "Required tools: %t\n", status.HasRequiredTools)
		if len(status.MissingTools) > 0 {
			fmt.Fprintf(out, "Missing:       %s\n", strings.Join(status.MissingTools, ", "))
		}
		fmt.Fprintf(out, "Debugger:      %t\n", status.HasDebugger)
		if len(status.InstalledComponents) == 0 {
			fmt.Fprintln(out, "Installed:     none")
			return nil
		}
		fmt.Fprintln(out, "Installed:")
		for _, c := range status.InstalledComponents {
			fmt.Fprintf(out, "  %s\n", c.DirName())
		}
		return nil
	},
}
