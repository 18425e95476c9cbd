package cmdutil

import "github.com/spf13/cobra"

var configPath = "config.yaml"

func RegisterConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		configPath,
		"YAML configuration file; flags and arguments take precedence, and a missing file is ignored",
	)
}

func ConfigPath() string {
	return configPath
}
