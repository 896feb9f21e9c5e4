package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagDataDir    = "datadir"
	flagDB         = "db"
	flagValidators = "validators"
	flagCache      = "cache"
	flagVerbosity  = "verbosity"
	flagConfig     = "config"
)

// newRootCmd represents the base command when called without any subcommands.
// Every flag may be set in the config file as well.
func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "vertexdag",
		Short:         "vertexdag: inspects and simulates the DAG consensus state",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if file := v.GetString(flagConfig); file != "" {
				v.SetConfigFile(file)
				if err := v.ReadInConfig(); err != nil {
					return err
				}
			}
			return setupLogging(cmd.ErrOrStderr(), v.GetString(flagVerbosity))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagDataDir, "vertexdag-data", "Folder of the DAG database")
	flags.String(flagDB, "leveldb", "Database engine, possible values: [leveldb, pebble, memory]")
	flags.Int(flagValidators, 4, "Number of fake validators 1..N, with equal weights")
	flags.Int(flagCache, defaultCacheMiB, "Megabytes of memory allocated to the database and buffers")
	flags.StringP(flagVerbosity, "v", "info", "Logging verbosity, possible values: [fatal, error, warning, info, debug]")
	flags.String(flagConfig, "", "TOML/YAML/JSON config file")
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		initSimulateCmd(v),
		initBatchesCmd(v),
		initVerifyCmd(v),
		initExportCmd(v),
		initImportCmd(v),
	)
	return rootCmd
}
