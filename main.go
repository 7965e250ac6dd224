package main

import "github.com/vigil-dev/vigil/internal/cli"

func main() {
	cli.Execute()
}
