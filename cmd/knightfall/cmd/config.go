package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/knightfall/knightfall/config"
)

var dumpConfigCmd = &cobra.Command{
	Use:   "dump-config",
	Short: "Print the fully merged configuration (CLI flags > YAML overlay > defaults) as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		merged, err := config.Load(rootCmd.PersistentFlags(), opts.OverlayFile)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(merged)
		if err != nil {
			return fmt.Errorf("knightfall: marshaling config: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpConfigCmd)
}
