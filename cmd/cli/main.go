package main

import (
	"os"

	"github.com/controle-pgm/controle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
