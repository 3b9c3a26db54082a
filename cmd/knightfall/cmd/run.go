package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knightfall/knightfall/config"
	"github.com/knightfall/knightfall/diagnostic"
	"github.com/knightfall/knightfall/internal/zlog"
	"github.com/knightfall/knightfall/vfs"
)

var compileCommandsPath string

// compileCommandJSON mirrors one entry of a compile_commands.json compilation database (the
// de facto standard format clang::tooling::CompilationDatabase reads).
type compileCommandJSON struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Command   string   `json:"command,omitempty"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze every translation unit named in a compile_commands.json compilation database",
	Long: `run loads a compile_commands.json compilation database and analyzes every translation unit
it names, reporting diagnostics from the registered (filtered) checkers.

This core ships no C/C++ parser of its own (SPEC §1: the parser is an external collaborator); run
wires the compilation database, configuration, and checker registry together and reports, per file,
that a concrete frontend.Decl provider must be plugged in to actually parse and analyze it.`,
	RunE: runAnalyze,
}

func init() {
	runCmd.Flags().StringVar(&compileCommandsPath, "compile-commands", "compile_commands.json", "path to a compile_commands.json compilation database")
	rootCmd.AddCommand(runCmd)
}

func runAnalyze(*cobra.Command, []string) error {
	log := zlog.For("cmd.run")

	merged, err := config.Load(rootCmd.PersistentFlags(), opts.OverlayFile)
	if err != nil {
		return err
	}
	opts = merged // the YAML overlay may have changed Checkers/ExcludeCheckers; newBuiltinManager reads opts

	mgr, err := newBuiltinManager()
	if err != nil {
		return err
	}
	log.Info().Int("checkers", len(mgr.Checkers())).Msg("registered checkers after filtering")

	db, err := loadCompilationDatabase(vfs.OSFS{}, compileCommandsPath)
	if err != nil {
		return err
	}

	sink := mgr.Sink()
	for _, file := range db.SortedFiles() {
		log.Info().Str("file", file).Msg("translation unit named in compilation database has no wired frontend.Decl provider")
	}

	if merged.TryFix {
		applier := diagnostic.NewApplier(vfs.OSFS{})
		if _, err := applier.Apply(sink.Diagnostics()); err != nil {
			return fmt.Errorf("knightfall: applying fixes: %w", err)
		}
	}

	renderer := diagnostic.NewRenderer(os.Stdout, merged.UseColor)
	renderer.RenderAll(sink.Diagnostics())
	if sink.HasErrors() {
		return fmt.Errorf("knightfall: analysis reported errors")
	}
	return nil
}

func loadCompilationDatabase(fs vfs.FS, path string) (*vfs.CompilationDatabase, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knightfall: reading compilation database %s: %w", path, err)
	}
	var raw []compileCommandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("knightfall: parsing compilation database %s: %w", path, err)
	}
	cmds := make([]vfs.CompileCommand, 0, len(raw))
	for _, r := range raw {
		args := r.Arguments
		if len(args) == 0 && r.Command != "" {
			args = []string{r.Command}
		}
		abs, err := vfs.MakeAbsolute(r.File)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, vfs.CompileCommand{File: abs, Directory: r.Directory, Args: args})
	}
	return vfs.NewCompilationDatabase(cmds), nil
}
