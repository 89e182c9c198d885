package main

import (
	"github.com/galaksio/quote-engine/internal/cli"
)

func main() {
	cli.Execute()
}
