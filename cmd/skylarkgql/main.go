// Command skylarkgql introspects Skylark GraphQL endpoints and prints the
// documents the compiler produces for them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/llehouerou/skylark-graphql/config"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skylarkgql",
		Short: "Compile GraphQL documents for a Skylark schema",
		Long: `
skylarkgql reads a Skylark schema, either by introspecting an endpoint or from
a saved introspection result or SDL file, and compiles the queries and
mutations a client would send for its object types.
`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String(config.KeyConfigFile, "",
		"Configuration file. Overridden by environment variables and flags.")
	flags.String(config.KeyEndpoint, "", "Skylark GraphQL endpoint.")
	flags.String(config.KeyToken, "", "Value of the Authorization header.")
	flags.String(config.KeySchemaFile, "",
		"Introspection result (.json) or SDL (.graphql) to read the schema from instead of the endpoint.")
	flags.String(config.KeySchemaVersion, "",
		"Version id of the schema; defaults to a fingerprint of its introspection result.")
	flags.Int(config.KeyPageSize, config.DefaultPageSize, "Default page size of listings.")
	flags.Bool(config.KeyDebug, false, "Enable debug logging and request decoration.")
	return cmd
}

// subCommand pairs a command with its own viper instance, so flags of one
// subcommand never leak into another.
type subCommand struct {
	Cmd  *cobra.Command
	Conf *viper.Viper
}

// register adds sc to the root command. It must run after sc's flags are
// defined, since binding copies the flag set as it is.
func register(sc *subCommand) {
	rootCmd.AddCommand(sc.Cmd)
	sc.Conf = viper.New()
	_ = sc.Conf.BindPFlags(sc.Cmd.Flags())
	_ = sc.Conf.BindPFlags(rootCmd.PersistentFlags())
}

// newLogger builds a development logger in debug mode and a production
// logger otherwise. Logs go to stderr so they never mix with documents.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// setup loads the configuration of sc and its logger.
func setup(sc *subCommand) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(sc.Conf)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
