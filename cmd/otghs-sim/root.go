package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ardnew/otghs/otghs"
	"github.com/ardnew/otghs/pkg"
)

var (
	rootOpts = struct {
		config  string
		verbose bool
		json    bool
	}{}

	rootCmd = &cobra.Command{
		Use:          "otghs-sim",
		Short:        "Drive the OTG_HS control transfer engine against a simulated core",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if rootOpts.verbose {
				pkg.SetLogLevel(slog.LevelDebug)
			}
			format := pkg.LogFormatText
			if rootOpts.json {
				format = pkg.LogFormatJSON
			}
			pkg.SetLogFormat(cmd.ErrOrStderr(), format)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.config, "config", "c", "", "YAML configuration file (default: built-in)")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "log every interrupt and register step")
	rootCmd.PersistentFlags().BoolVar(&rootOpts.json, "json", false, "log in JSON")

	rootCmd.AddCommand(enumerateCmd, configCmd)
}

// effectiveConfig loads the configuration selected on the command line.
func effectiveConfig() (otghs.Config, error) {
	cfg, err := loadConfig(rootOpts.config)
	if err != nil {
		return otghs.Config{}, err
	}
	pkg.LogDebug(pkg.ComponentCLI, "configuration loaded", "path", rootOpts.config)
	return cfg, nil
}
