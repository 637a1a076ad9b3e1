package main

import "github.com/pfrederiksen/close-games/internal/cli"

func main() {
	cli.Execute()
}
