// cmd/pideploy/connection.go

package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pideploy/internal/models"
)

var (
	connHost     string
	connPort     int
	connUser     string
	connPassword string
	connDefault  bool
)

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Manage stored device connections",
}

var connectionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a device connection, identified as user@host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		password := connPassword
		if password == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Password for %s@%s: ", connUser, connHost)
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(raw)
		}

		info := &models.ConnectionInfo{
			Host:      connHost,
			Port:      connPort,
			User:      connUser,
			Password:  password,
			IsDefault: connDefault,
		}
		if err := info.Validate(); err != nil {
			return err
		}
		if err := store.Add(info); err != nil {
			return err
		}
		if connDefault {
			if err := store.SetDefault(info.Name()); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added connection %s\n", info.Name())
		return nil
	},
}

var connectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		for _, info := range store.List() {
			marker := " "
			if info.IsDefault {
				marker = "*"
			}
			auth := "password"
			if info.PrivateKeyPath != "" {
				auth = "key"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (port %d, %s auth)\n", marker, info.Name(), info.Port, auth)
		}
		return nil
	},
}

var connectionRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a stored connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed connection %s\n", args[0])
		return nil
	},
}

var connectionDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Mark a stored connection as the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.SetDefault(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default connection is now %s\n", args[0])
		return nil
	},
}

// resolveConnection picks the named connection, or the stored default when
// name is empty.
func resolveConnection(store interface {
	Get(string) (*models.ConnectionInfo, bool)
	Default() (*models.ConnectionInfo, bool)
}, name string) (*models.ConnectionInfo, error) {
	if name != "" {
		info, ok := store.Get(name)
		if !ok {
			return nil, fmt.Errorf("no connection named %q", name)
		}
		return info, nil
	}
	info, ok := store.Default()
	if !ok {
		return nil, fmt.Errorf("no default connection configured")
	}
	return info, nil
}

func init() {
	connectionAddCmd.Flags().StringVar(&connHost, "host", "", "Device host name or IP")
	connectionAddCmd.Flags().IntVar(&connPort, "port", 22, "SSH port")
	connectionAddCmd.Flags().StringVar(&connUser, "user", "pi", "SSH user")
	connectionAddCmd.Flags().StringVar(&connPassword, "password", "", "SSH password (prompted when omitted)")
	connectionAddCmd.Flags().BoolVar(&connDefault, "default", false, "Mark this connection as the default")
	_ = connectionAddCmd.MarkFlagRequired("host")

	connectionCmd.AddCommand(connectionAddCmd)
	connectionCmd.AddCommand(connectionListCmd)
	connectionCmd.AddCommand(connectionRemoveCmd)
	connectionCmd.AddCommand(connectionDefaultCmd)
}
