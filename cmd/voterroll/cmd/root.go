package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/voterroll/internal/config"
	"github.com/MeKo-Tech/voterroll/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Configuration resolved for the running command.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// flagKeys maps command flags to configuration keys. Flags are bound when
// the command runs, so commands may share flag names.
var flagKeys = map[string]string{
	"verbose":        "verbose",
	"log-level":      "log_level",
	"template":       "template.name",
	"template-file":  "template.file",
	"ocr-backend":    "ocr.backend",
	"pages":          "pipeline.pages",
	"workers":        "pipeline.workers",
	"line-tolerance": "pipeline.line_tolerance",
	"translit":       "translit.backend",
	"format":         "output.format",
	"output":         "output.file",
	"postgres-url":   "postgres.url",
	"postgres-table": "postgres.table",
	"metrics-addr":   "metrics.addr",
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "voterroll",
	Short: "Extract voter records from scanned electoral rolls",
	Long: `voterroll turns scanned electoral-roll PDFs into structured voter records.

Each page is sent to an OCR service, the recognized words are placed into the
voter grid of a page template, and every grid block is parsed into a record
(EPIC number, names, relation, house number, age and gender). Marathi names
are transliterated to English and the records are written as JSON or CSV, or
copied into PostgreSQL.

Examples:
  voterroll extract roll.pdf --format csv -o voters.csv
  voterroll extract roll.pdf --pages 3-10 --save-ocr ./ocr
  voterroll parse ./ocr --template wardwise
  voterroll templates`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $XDG_CONFIG_HOME/voterroll, /etc/voterroll)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
}

// setup binds the running command's flags, loads the configuration and
// installs the structured logger.
func setup(cmd *cobra.Command, _ []string) error {
	bindFlags(cmd)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	globalConfig = cfg

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		}
	}

	// Logs go to stderr so stdout carries only the exported records.
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return nil
}

func bindFlags(cmd *cobra.Command) {
	visit := func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = viper.BindPFlag(key, f)
		}
	}
	cmd.Flags().VisitAll(visit)
	cmd.InheritedFlags().VisitAll(visit)
}

// loadConfig reads the config file and VOTERROLL_ environment variables.
func loadConfig() (*config.Config, error) {
	configLoader = config.NewLoader()
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = configLoader.LoadWithFile(cfgFile)
	} else {
		cfg, err = configLoader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return cfg, nil
}

// GetConfig returns the configuration of the running command.
func GetConfig() *config.Config {
	if globalConfig == nil {
		cfg := config.DefaultConfig()
		return &cfg
	}
	return globalConfig
}
