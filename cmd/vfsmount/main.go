package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	app := newApp(&runner{stdout: color.Output})
	if err := app.Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
