package main

import "github.com/devicelab-dev/axreplay/pkg/cli"

func main() {
	cli.Execute()
}
