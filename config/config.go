package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/formfill"
	"github.com/sagarc03/formfill/gcs"
	formfillhttp "github.com/sagarc03/formfill/http"
	"github.com/sagarc03/formfill/s3"
	"github.com/sagarc03/formfill/storage"
	"github.com/sagarc03/formfill/stowry"
	"github.com/sagarc03/formfill/supabase"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for formfill.
type Config struct {
	Env      string                  `mapstructure:"env" validate:"required,oneof=dev development prod production"`
	Server   ServerConfig            `mapstructure:"server"`
	Storage  StorageConfig           `mapstructure:"storage"`
	Template TemplateConfig          `mapstructure:"template"`
	PDF      PDFConfig               `mapstructure:"pdf"`
	CORS     formfillhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig               `mapstructure:"log"`
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	MaxBodySize  int64         `mapstructure:"max_body_size" validate:"min=0"`
}

// StorageConfig selects the object store backend and the bucket holding the
// template and schema objects.
type StorageConfig struct {
	Backend      string           `mapstructure:"backend" validate:"required,oneof=gcs s3 supabase stowry filesystem"`
	Bucket       string           `mapstructure:"bucket" validate:"required"`
	ProjectID    string           `mapstructure:"project_id"`
	FetchTimeout time.Duration    `mapstructure:"fetch_timeout" validate:"min=0"`
	GCS          GCSConfig        `mapstructure:"gcs"`
	S3           S3Config         `mapstructure:"s3"`
	Supabase     SupabaseConfig   `mapstructure:"supabase"`
	Stowry       StowryConfig     `mapstructure:"stowry"`
	Filesystem   FilesystemConfig `mapstructure:"filesystem"`
}

type GCSConfig struct {
	Endpoint  string `mapstructure:"endpoint" validate:"omitempty,url"`
	Anonymous bool   `mapstructure:"anonymous"`
}

type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PathStyle bool   `mapstructure:"path_style"`
}

type SupabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
	Key string `mapstructure:"key"`
}

type StowryConfig struct {
	Endpoint  string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type FilesystemConfig struct {
	Root string `mapstructure:"root"`
}

// TemplateConfig names the objects read on every request.
type TemplateConfig struct {
	PDF    string `mapstructure:"pdf" validate:"required"`
	Schema string `mapstructure:"schema" validate:"required"`
}

// PDFConfig holds form filler settings.
type PDFConfig struct {
	// ConfigDir is where pdfcpu installs its configuration and fonts. Empty
	// means the user cache directory.
	ConfigDir string `mapstructure:"config_dir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// Open returns the settings storage.Open needs for the configured backend.
func (c StorageConfig) Open() storage.Config {
	return storage.Config{
		Backend: c.Backend,
		GCS: gcs.Config{
			ProjectID: c.ProjectID,
			Endpoint:  c.GCS.Endpoint,
			Anonymous: c.GCS.Anonymous,
		},
		S3: s3.Config{
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
			PathStyle: c.S3.PathStyle,
		},
		Supabase: supabase.Config{URL: c.Supabase.URL, Key: c.Supabase.Key},
		Stowry: stowry.Config{
			Endpoint:  c.Stowry.Endpoint,
			AccessKey: c.Stowry.AccessKey,
			SecretKey: c.Stowry.SecretKey,
		},
		Root: c.Filesystem.Root,
	}
}

// Service returns the formfill.Service settings.
func (c *Config) Service() formfill.ServiceConfig {
	return formfill.ServiceConfig{
		Bucket:         c.Storage.Bucket,
		TemplateObject: c.Template.PDF,
		SchemaObject:   c.Template.Schema,
		FetchTimeout:   c.Storage.FetchTimeout,
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":          "server.port",
	"backend":       "storage.backend",
	"bucket":        "storage.bucket",
	"storage-root":  "storage.filesystem.root",
	"fetch-timeout": "storage.fetch_timeout",
	"template":      "template.pdf",
	"schema":        "template.schema",
	"log-level":     "log.level",
}

// envAliases are the unprefixed environment variables accepted alongside the
// FORMFILL_ prefixed ones. Earlier names take precedence.
var envAliases = map[string][]string{
	"storage.project_id": {"FORMFILL_STORAGE_PROJECT_ID", "GOOGLE_PROJECT_ID"},
	"storage.bucket":     {"FORMFILL_STORAGE_BUCKET", "GCS_BUCKET"},
	"template.pdf":       {"FORMFILL_TEMPLATE_PDF", "TEMPLATE_PDF_FILE_NAME"},
	"template.schema":    {"FORMFILL_TEMPLATE_SCHEMA", "TEMPLATE_VALIDATION_FIELDS_FILE_NAME"},
	"server.port":        {"FORMFILL_SERVER_PORT", "PORT"},
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key is
// given a default so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.max_body_size", 1<<20)

	v.SetDefault("storage.backend", "gcs")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.project_id", "")
	v.SetDefault("storage.fetch_timeout", 10*time.Second)
	v.SetDefault("storage.gcs.endpoint", "")
	v.SetDefault("storage.gcs.anonymous", false)
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.path_style", false)
	v.SetDefault("storage.supabase.url", "")
	v.SetDefault("storage.supabase.key", "")
	v.SetDefault("storage.stowry.endpoint", "")
	v.SetDefault("storage.stowry.access_key", "")
	v.SetDefault("storage.stowry.secret_key", "")
	v.SetDefault("storage.filesystem.root", "./data")

	v.SetDefault("template.pdf", "")
	v.SetDefault("template.schema", "")

	v.SetDefault("pdf.config_dir", "")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"POST", "GET", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

// LoadDotEnv loads environment variables from the given .env files (default
// ".env"). Missing files are ignored and variables already set in the
// environment are never overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
//
// A configuration that fails validation returns an error wrapping
// formfill.ErrConfig.
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("FORMFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := newValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w: %w", formfill.ErrConfig, err)
	}

	if !formfill.IsValidObjectName(cfg.Template.PDF) || !formfill.IsValidObjectName(cfg.Template.Schema) {
		return nil, fmt.Errorf("validate config: %w: invalid template object names %q, %q",
			formfill.ErrConfig, cfg.Template.PDF, cfg.Template.Schema)
	}

	return &cfg, nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterStructValidation(validateStorage, StorageConfig{})
	return validate
}

// validateStorage checks that the block of the selected backend carries the
// settings the backend cannot run without.
func validateStorage(sl validator.StructLevel) {
	c := sl.Current().Interface().(StorageConfig)

	switch c.Backend {
	case "supabase":
		if c.Supabase.URL == "" {
			sl.ReportError(c.Supabase.URL, "supabase.url", "URL", "required_for_backend", c.Backend)
		}
		if c.Supabase.Key == "" {
			sl.ReportError(c.Supabase.Key, "supabase.key", "Key", "required_for_backend", c.Backend)
		}
	case "stowry":
		if c.Stowry.Endpoint == "" {
			sl.ReportError(c.Stowry.Endpoint, "stowry.endpoint", "Endpoint", "required_for_backend", c.Backend)
		}
	case "filesystem":
		if c.Filesystem.Root == "" {
			sl.ReportError(c.Filesystem.Root, "filesystem.root", "Root", "required_for_backend", c.Backend)
		}
	case "s3":
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			sl.ReportError(c.S3.SecretKey, "s3.secret_key", "SecretKey", "keys_set_together", c.Backend)
		}
	}
}
