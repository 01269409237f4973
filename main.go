package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// main - is the entry point of the application. It hands over to the cobra commands.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cobra.CheckErr(newRootCmd().Execute())
}
