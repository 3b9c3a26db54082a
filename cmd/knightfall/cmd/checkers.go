package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/knightfall/knightfall/checkers/inspect"
	"github.com/knightfall/knightfall/diagnostic"
	"github.com/knightfall/knightfall/registry"
)

// newBuiltinManager returns a registry.Manager with every built-in analysis and checker
// registered, filtered by the merged config's checker/analysis glob patterns. Every subcommand
// that inspects or runs the registered set builds one the same way, so the glob filtering always
// reflects the same flags the user passed.
func newBuiltinManager() (*registry.Manager, error) {
	mgr := registry.NewManager(diagnostic.NewSink())
	mgr.RegisterAnalysis(registry.NumericalAnalysis{})
	mgr.RegisterAnalysis(registry.PointerAnalysis{})
	mgr.RegisterChecker(inspect.New())

	if err := mgr.FilterByGlob(opts.Checkers, opts.ExcludeCheckers); err != nil {
		return nil, err
	}
	if err := mgr.ResolveDependencies(); err != nil {
		return nil, err
	}
	return mgr, nil
}

var checkersCmd = &cobra.Command{
	Use:   "list-checkers",
	Short: "List the registered checkers, after applying --checkers/--exclude-checkers filters",
	RunE: func(*cobra.Command, []string) error {
		mgr, err := newBuiltinManager()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(mgr.Checkers()))
		for _, c := range mgr.Checkers() {
			names = append(names, c.Name())
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkersCmd)
}
