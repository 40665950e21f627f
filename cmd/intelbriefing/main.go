package main

import (
	"os"

	"IntelBriefing/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
