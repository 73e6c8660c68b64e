package main

import (
	"context"
	"os"

	"github.com/dpshade/prompt-catalog/internal/cli"
)

var version = "0.1.0"

func main() {
	c := cli.NewCLI(version, os.Stdout, os.Stderr)
	os.Exit(c.Execute(context.Background(), os.Args[1:]))
}
