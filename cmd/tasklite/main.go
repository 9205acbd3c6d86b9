package main

import (
	"fmt"
	"os"

	"github.com/nhle/tasklite/internal/theme"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, theme.ErrorStyle.Render("error:"), err)
		os.Exit(1)
	}
}
