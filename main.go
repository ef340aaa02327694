package main

import (
	"os"

	"github.com/aaexhub/laohu-todo/pkg/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
