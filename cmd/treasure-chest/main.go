package main

import "github.com/hrmshandy/treasure-chest/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
