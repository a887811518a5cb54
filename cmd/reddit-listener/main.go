// Command reddit-listener researches topics through Reddit discussions:
// it finds what communities ask, complain about, and engage with, and
// turns that into content ideas.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
