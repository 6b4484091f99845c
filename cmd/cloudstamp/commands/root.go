package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DrSkyle/cloudstamp/pkg/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cloudstamp",
	Short: "Provenance tagging for cloud resources",
	Long: `cloudstamp - resource provenance reconciler

Listens for resource change events and stamps resources with who created
them, when, and who last modified them.`,
	Version: version.Current,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default cloudstamp.yaml)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit JSON logs")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	_ = viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(ServeCmd)
	rootCmd.AddCommand(ConfigCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cloudstamp")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/cloudstamp")
	}

	viper.SetEnvPrefix("CLOUDSTAMP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the shared flags.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if viper.GetBool("json_logs") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
