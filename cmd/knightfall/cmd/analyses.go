package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knightfall/knightfall/registry"
)

var analysesCmd = &cobra.Command{
	Use:   "list-analyses",
	Short: "List the built-in analyses and their descriptions",
	RunE: func(*cobra.Command, []string) error {
		for _, k := range []registry.Kind{registry.KindNumerical, registry.KindPointer} {
			fmt.Printf("%-12s %s\n", k.String(), registry.DescribeKind(k))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analysesCmd)
}
