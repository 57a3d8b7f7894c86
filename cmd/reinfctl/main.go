package main

import (
	"reinf/internal/cli"
	"reinf/internal/log"
)

func main() {
	cli.SetupLogger(log.ComponentApp)
	cli.Execute()
}
