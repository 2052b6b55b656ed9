package main

import (
	"os"

	"github.com/tobsdb/tabq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
