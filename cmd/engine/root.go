package main

import (
	"fmt"

	"github.com/harrison/sqlengine/engine"
	"github.com/spf13/cobra"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	dir        string
	auth       bool
	configPath string
	logLevel   string
	logDir     string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "engine",
		Short:        "Embedded SQL engine CLI",
		Long:         "engine hosts the embedded relational data store: open a persistence directory, run statements, and manage users.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.dir, "dir", "./enginedata", "persistence directory")
	cmd.PersistentFlags().BoolVar(&flags.auth, "auth", false, "enable the authentication/ownership layer")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file (overrides --dir/--auth defaults)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: trace/debug/info/warn/error; empty keeps the config file's level (info by default)")
	cmd.PersistentFlags().StringVar(&flags.logDir, "log-dir", "", "directory for the run log; empty disables file logging")

	cmd.AddCommand(newExecCommand(flags))
	cmd.AddCommand(newReplCommand(flags))
	cmd.AddCommand(newRegisterUserCommand(flags))
	cmd.AddCommand(newLoginCommand(flags))

	return cmd
}

// openEngine loads configuration (YAML overlay over the flags-derived
// defaults) and opens the engine façade.
func openEngine(flags *rootFlags) (*engine.DB, error) {
	cfg, err := engine.LoadConfig(flags.configPath, flags.dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.auth {
		cfg.AuthEnabled = true
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logDir != "" {
		cfg.LogDir = flags.logDir
	}
	return engine.Open(cfg)
}
