// Package config provides configuration loading and validation for formfill.
//
// The package handles YAML configuration files, .env files, environment
// variables, and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FORMFILL_ prefix, plus the aliases below)
//  4. CLI flags
//
// Call LoadDotEnv before Load to populate the environment from a .env file.
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with FORMFILL_ prefix:
//   - server.port → FORMFILL_SERVER_PORT
//   - storage.backend → FORMFILL_STORAGE_BACKEND
//   - log.level → FORMFILL_LOG_LEVEL
//   - pdf.config_dir → FORMFILL_PDF_CONFIG_DIR
//
// A few keys also accept unprefixed names:
//   - GOOGLE_PROJECT_ID → storage.project_id
//   - GCS_BUCKET → storage.bucket
//   - TEMPLATE_PDF_FILE_NAME → template.pdf
//   - TEMPLATE_VALIDATION_FIELDS_FILE_NAME → template.schema
//   - PORT → server.port
//
// # Validation
//
// Configuration is validated using struct tags and a storage level check:
//   - Port must be 1-65535
//   - Backend must be gcs, s3, supabase, stowry, or filesystem
//   - Bucket, template.pdf and template.schema are required
//   - The selected backend's block must carry its required settings
//   - Log level must be debug, info, warn, or error
//
// Validation failures wrap formfill.ErrConfig.
package config
