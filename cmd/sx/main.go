package main

import (
	"os"

	"github.com/sxtool/sx/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
