package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/runnerr0/filmfinder/internal/cli"
)

var version = "dev"

func main() {
	// A missing .env is normal; the environment and config file still apply.
	_ = godotenv.Load()

	if err := cli.Run(version); err != nil {
		fmt.Fprintln(os.Stderr, "filmfinder:", err)
		os.Exit(1)
	}
}
