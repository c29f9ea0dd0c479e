package main

import (
	"os"

	"github.com/fastygo/taskdesk/internal/cli"
)

var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}
