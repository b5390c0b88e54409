package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "appraisal-gallery",
	Short: "Lay out appraisal report photos into printable gallery pages",
	Long: `Appraisal Gallery detects the orientation of every photo attached to a
property appraisal report and lays the photos out into a fixed number of
printable pages, followed by the documentary status and influencing factors
sections. Layouts are available from the command line and over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
