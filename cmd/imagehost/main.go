package main

import (
	"os"

	"github.com/templui/imagehost/cmd/imagehost/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:], os.Stdout, os.Stderr))
}
