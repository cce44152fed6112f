package main

import (
	"context"
	"os"

	"github.com/epiq/epiq/pkg/cli"
)

var version = "dev"

func main() {
	cfg := cli.NewConfig()
	cfg.Version = version

	c := cli.NewCLI(cfg)
	if err := c.ExecuteContext(context.Background(), os.Args[1:]); err != nil {
		c.PrintError(err)
		os.Exit(1)
	}
}
