package main

import (
	"log"

	"casavia/internal/client/cli"
)

func main() {
	if err := cli.Run(); err != nil {
		log.Fatal(err)
	}
}
