package main

import (
	"os"

	"github.com/heimdex/heimdex-timeline/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
