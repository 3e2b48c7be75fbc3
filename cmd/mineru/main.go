package main

import (
	"log"
	"os"

	"mineru-cli/internal/cli"
)

func main() {
	app, err := cli.New()
	if err != nil {
		log.Fatalf("initialize mineru: %v", err)
	}

	os.Exit(app.Run(os.Args[1:]))
}
