// Command chemlogqc summarises computational chemistry logs for quality
// control.
package main

import (
	"os"

	"github.com/turtacn/ChemLog-QC/internal/interfaces/cli"
)

// Build-time variables injected via ldflags:
//
//	go build -ldflags "-X main.version=v0.3.0 -X main.commit=$(git rev-parse --short HEAD)"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
