// Command knightfall is the CLI entry point wiring frontend -> wto -> fixpoint ->
// blockexec/resolver -> registry -> diagnostic, the Go-native analogue of
// original_source/analyzer/tools/main.cpp. Grounded on the teacher's cmd/nilaway/main.go for the
// top-level driver shape and CWBudde-go-dws's cmd/dwscript/cmd package (cobra subcommand layout:
// a root command plus one file per subcommand, package-level persistent flag state).
package main

import (
	"fmt"
	"os"

	"github.com/knightfall/knightfall/cmd/knightfall/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "knightfall:", err)
		os.Exit(1)
	}
}
