package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var preamble = `daapd ` + Version + `

daapd is a DAAP (Digital Audio Access Protocol) music-sharing server.

daapd comes with ABSOLUTELY NO WARRANTY. This is free software, and you
are welcome to redistribute it under certain conditions.`

var rootCmd = &cobra.Command{
	Use:     "daapd",
	Short:   "daapd DAAP music server",
	Long:    preamble,
	Version: Version,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
