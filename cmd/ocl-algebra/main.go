package main

import (
	"os"

	"github.com/timo-42/ocl-algebra/cmd/ocl-algebra/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
