package main

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/attendance-insight-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
