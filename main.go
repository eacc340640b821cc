package main

import (
	"os"

	"github.com/cineverse-captions/cineverse/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
