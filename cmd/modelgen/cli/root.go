package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/faucetdb/modelgen/internal/config"
)

const envPrefix = "MODELGEN"

var (
	cfgFile    string
	verbose    bool
	appVersion string

	// appConfig is the effective configuration, loaded before every command.
	appConfig = config.DefaultYAMLConfig()
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelgen",
		Short: "Generate AdonisJS Lucid models from a database schema",
		Long: `modelgen introspects a SQL database, infers the relationships between its
tables from their foreign keys (belongsTo, hasMany and manyToMany through
pivot tables) and writes one Lucid model file per table.

It can also preview the models over HTTP, expose them to AI agents over MCP,
export them as OpenAPI component schemas, and detect schema drift since the
last generation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./modelgen.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the service store (default: ~/.modelgen)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newOpenAPICmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

// initConfig loads modelgen.yaml from --config, the working directory or the
// data directory, then applies MODELGEN_* environment overrides
// (MODELGEN_SERVER_PORT overrides server.port).
func initConfig() error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("modelgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(resolveDataDir())
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := config.DefaultYAMLConfig()
	configFileUsed = ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		configFileUsed = v.ConfigFileUsed()
		if cfg, err = config.LoadYAMLConfig(configFileUsed); err != nil {
			return err
		}
	}

	applyEnvOverrides(v, cfg)
	appConfig = cfg
	return nil
}

// applyEnvOverrides copies every key that has a MODELGEN_* variable set
// from v into cfg. v resolves environment before file values.
func applyEnvOverrides(v *viper.Viper, cfg *config.YAMLConfig) {
	set := func(key string) bool {
		_, ok := os.LookupEnv(envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		return ok
	}

	if set("generator.output_dir") {
		cfg.Generator.OutputDir = v.GetString("generator.output_dir")
	}
	if set("generator.ignore_tables") {
		cfg.Generator.IgnoreTables = v.GetStringSlice("generator.ignore_tables")
	}
	if set("generator.overwrite") {
		cfg.Generator.Overwrite = v.GetBool("generator.overwrite")
	}
	if set("server.host") {
		cfg.Server.Host = v.GetString("server.host")
	}
	if set("server.port") {
		cfg.Server.Port = v.GetInt("server.port")
	}
	if set("server.rate_limit") {
		cfg.Server.RateLimit = v.GetInt("server.rate_limit")
	}
	if set("mcp.transport") {
		cfg.MCP.Transport = v.GetString("mcp.transport")
	}
	if set("mcp.port") {
		cfg.MCP.Port = v.GetInt("mcp.port")
	}
	if set("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if set("logging.format") {
		cfg.Logging.Format = v.GetString("logging.format")
	}
}
