// Package main provides orderctl, which composes order messages and deep links from the catalog.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/haikalarif/portofolio-freelance/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := rootCmd(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
