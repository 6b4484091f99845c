package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/DrSkyle/cloudstamp/pkg/config"
)

// ConfigCmd prints the effective filter configuration, defaults merged with
// any override file, so operators can see exactly what will be skipped.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective filter configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("filter-config")
		if path == "" {
			path = viper.GetString("filter_config")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, _ = os.Stdout.Write(out)
		return nil
	},
}

func init() {
	ConfigCmd.Flags().String("filter-config", "", "YAML file overriding the filter lists")
}
