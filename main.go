package main

import (
	"os"

	"github.com/sadopc/worktime/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
