// askSQL answers questions about a SQL database in plain English.
//
// Entry point: initializes Cobra root command and launches
// the console question loop by default.
package main

import (
	"os"

	"github.com/DachengChen/askSQL/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
