package main

import (
	"os"

	"github.com/5amCurfew/singo/cmd"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.1.0"
var catalogPath string

func main() {
	Execute()
}

func Execute() {
	checkCmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "resolve stream selection against this catalog file")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(catalogCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "singo",
	Version: version,
	Short:   "singo - Singer message stream toolkit",
	Long:    `singo works with the Singer specification's wire format: RECORD, SCHEMA and STATE messages read line-by-line from a tap, metrics on the log side channel, and catalog documents describing discoverable streams.`,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "validate a message stream read from stdin",
	Args:  cobra.ExactArgs(0),
	RunE: func(command *cobra.Command, args []string) error {
		log.SetFormatter(&log.JSONFormatter{})

		if err := cmd.Check(os.Stdin, catalogPath); err != nil {
			log.WithFields(log.Fields{"error": err}).Error("message stream check failed")
			return err
		}
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog [PATH_TO_CATALOG_JSON]",
	Short: "parse a catalog file and report its streams",
	Args:  cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		log.SetFormatter(&log.JSONFormatter{})

		if err := cmd.Catalog(args[0]); err != nil {
			log.WithFields(log.Fields{"error": err}).Error("catalog parse failed")
			return err
		}
		return nil
	},
}
