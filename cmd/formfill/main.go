package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/formfill/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "formfill",
	Short:   "Validate form values and fill a PDF template",
	Long: `formfill fetches a validation schema and a PDF form template from object
storage, checks submitted values against the schema and returns the filled
document.

Configuration is read from config.yaml (or --config), a .env file, FORMFILL_
prefixed environment variables and flags, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// configure writes the config file; it must run without one.
		if cmd.Annotations["skipConfig"] == "true" || cmd.Name() == "help" {
			return nil
		}

		if err := config.LoadDotEnv(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg, logOutput(cmd))
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged in order (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend: gcs, s3, supabase, stowry, filesystem (env: FORMFILL_STORAGE_BACKEND)")
	rootCmd.PersistentFlags().String("bucket", "", "bucket holding the template and schema (env: GCS_BUCKET)")
	rootCmd.PersistentFlags().String("storage-root", "", "base directory of the filesystem backend (default: ./data)")
	rootCmd.PersistentFlags().Duration("fetch-timeout", 0, "timeout for each object fetch (default: 10s)")
	rootCmd.PersistentFlags().String("template", "", "PDF template object name (env: TEMPLATE_PDF_FILE_NAME)")
	rootCmd.PersistentFlags().String("schema", "", "validation schema object name (env: TEMPLATE_VALIDATION_FIELDS_FILE_NAME)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
