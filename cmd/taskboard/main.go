package main

import (
	"os"

	"github.com/tiwariParth/taskboard/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
