package main

import (
	"os"

	"github.com/ariel-frischer/gatehook/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
