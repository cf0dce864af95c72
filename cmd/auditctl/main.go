// Package main is the entry point for the auditctl admin binary.
package main

import (
	"os"

	"auditchain/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
