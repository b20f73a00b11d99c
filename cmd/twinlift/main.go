package main

import "github.com/twinlift/twinlift/internal/cli"

func main() {
	cli.Execute()
}
