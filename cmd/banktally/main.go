package main

import (
	"github.com/kpane/banktally/internal/cli"
)

func main() {
	cli.Execute()
}
