package main

import (
	"github.com/refdatahub/refgate/internal/cli"
)

func main() {
	cli.Execute()
}
