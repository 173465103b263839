package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/appetiteclub/apt"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	appName      = "seating-utils"
	appNamespace = "SEATING"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

// env carries what every command needs once the root has loaded config.
type env struct {
	config *apt.Config
	logger apt.Logger
}

func NewRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Operator commands for the seating service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
			}

			config, err := apt.LoadConfig(appNamespace, nil)
			if err != nil {
				return fmt.Errorf("cannot load config: %w", err)
			}

			level := config.GetStringOrDef("log.level", "info")
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = "debug"
			}

			e.config = config
			e.logger = apt.NewLogger(level)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newSeedTablesCmd(e))
	root.AddCommand(newResetDBCmd(e))
	root.AddCommand(newTailNotificationsCmd(e))
	root.AddCommand(newReplayNotificationsCmd(e))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit=%s)\n", appName, Version, CommitSHA)
		},
	}
}
