package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitlab.com/mipimipi/daapd/src/internal/library/memory"
	"gitlab.com/mipimipi/daapd/src/internal/server"
)

var demo bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run daapd service",
	Long:  "Run the daapd service",
	Run: func(cmd *cobra.Command, args []string) {
		if !demo {
			fmt.Println("daapd cannot be run: no library adapter configured; pass --demo to run against the built-in sample library")
			os.Exit(1)
		}
		if err := server.Run(Version, demoLibrary()); err != nil {
			fmt.Printf("daapd cannot be run: %v\n", err)
			os.Exit(1)
		}
	},
}

func demoLibrary() *memory.Library {
	lib := memory.New(1, "daapd demo")
	lib.AddTrack(1, memory.Track{Title: "Sample Track One", Artist: "daapd", Album: "Demo", Format: "mp3", Duration: 180000})
	lib.AddTrack(2, memory.Track{Title: "Sample Track Two", Artist: "daapd", Album: "Demo", Format: "mp3", Duration: 210000})
	return lib
}

func init() {
	runCmd.Flags().BoolVar(&demo, "demo", false, "run against the built-in in-memory sample library instead of a real adapter")
	rootCmd.AddCommand(runCmd)
}
