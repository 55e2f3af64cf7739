package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/solatis/namekeeper/cmd/namekeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, cmd.ErrViolations) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
