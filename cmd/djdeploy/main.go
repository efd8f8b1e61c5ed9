package main

import (
	"os"

	"djdeploy/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
