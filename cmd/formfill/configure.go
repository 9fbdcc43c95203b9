package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/formfill"
	"github.com/sagarc03/formfill/filesystem"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write a config file interactively",
	Long: `Create a formfill config file interactively.

You will be prompted for:
  - Storage backend and its connection settings
  - Bucket holding the template and schema
  - PDF template and validation schema object names
  - HTTP server port

Secrets are written to the file in plain text; keep it out of version control.`,
	Annotations: map[string]string{"skipConfig": "true"},
	RunE:        runConfigure,
}

func init() {
	configureCmd.Flags().StringP("output", "o", "config.yaml", "config file to write")

	rootCmd.AddCommand(configureCmd)
}

var backends = []string{"gcs", "s3", "supabase", "stowry", "filesystem"}

// configFile is the YAML layout read back by config.Load.
type configFile struct {
	Server   serverSection   `yaml:"server"`
	Storage  storageSection  `yaml:"storage"`
	Template templateSection `yaml:"template"`
}

type serverSection struct {
	Port int `yaml:"port"`
}

type storageSection struct {
	Backend    string             `yaml:"backend"`
	Bucket     string             `yaml:"bucket"`
	ProjectID  string             `yaml:"project_id,omitempty"`
	GCS        *gcsSection        `yaml:"gcs,omitempty"`
	S3         *s3Section         `yaml:"s3,omitempty"`
	Supabase   *supabaseSection   `yaml:"supabase,omitempty"`
	Stowry     *stowrySection     `yaml:"stowry,omitempty"`
	Filesystem *filesystemSection `yaml:"filesystem,omitempty"`
}

type gcsSection struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	Anonymous bool   `yaml:"anonymous,omitempty"`
}

type s3Section struct {
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

type supabaseSection struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

type stowrySection struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

type filesystemSection struct {
	Root string `yaml:"root"`
}

type templateSection struct {
	PDF    string `yaml:"pdf"`
	Schema string `yaml:"schema"`
}

// Save writes the config to path, creating the parent directory if needed.
func (c *configFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	outPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(outPath); err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", outPath),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	backendSelect := promptui.Select{
		Label: "Storage backend",
		Items: backends,
	}
	_, backend, err := backendSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	cfg := configFile{
		Server:  serverSection{Port: 8080},
		Storage: storageSection{Backend: backend},
	}

	if err := promptBackend(&cfg.Storage); err != nil {
		return handlePromptError(err)
	}

	bucketPrompt := promptui.Prompt{
		Label:    "Bucket",
		Validate: required("bucket"),
	}
	if cfg.Storage.Bucket, err = bucketPrompt.Run(); err != nil {
		return handlePromptError(err)
	}

	var objects []string
	if cfg.Storage.Filesystem != nil {
		objects = listLocalObjects(cmd.Context(), cfg.Storage.Filesystem.Root, cfg.Storage.Bucket)
	}

	if cfg.Template.PDF, err = promptObject("PDF template object", "form.pdf", objects); err != nil {
		return handlePromptError(err)
	}
	if cfg.Template.Schema, err = promptObject("Validation schema object", "fields.json", objects); err != nil {
		return handlePromptError(err)
	}

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(input string) error {
			port, convErr := strconv.Atoi(input)
			if convErr != nil || port < 1 || port > 65535 {
				return errors.New("port must be between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Save(outPath); err != nil {
		return err
	}

	fmt.Printf("Config written to %s.\n", outPath)
	fmt.Printf("Start the server with: formfill serve --config %s\n", outPath)
	return nil
}

// promptBackend asks for the settings of the selected backend.
func promptBackend(s *storageSection) error {
	var err error

	switch s.Backend {
	case "gcs":
		s.GCS = &gcsSection{}
		projectPrompt := promptui.Prompt{Label: "Google project ID (optional)"}
		if s.ProjectID, err = projectPrompt.Run(); err != nil {
			return err
		}
		endpointPrompt := promptui.Prompt{Label: "Endpoint URL (emulators only, optional)", Validate: optionalURL}
		if s.GCS.Endpoint, err = endpointPrompt.Run(); err != nil {
			return err
		}
		s.GCS.Anonymous = s.GCS.Endpoint != ""

	case "s3":
		s.S3 = &s3Section{}
		regionPrompt := promptui.Prompt{Label: "Region", Default: "us-east-1"}
		if s.S3.Region, err = regionPrompt.Run(); err != nil {
			return err
		}
		endpointPrompt := promptui.Prompt{Label: "Endpoint URL (optional)", Validate: optionalURL}
		if s.S3.Endpoint, err = endpointPrompt.Run(); err != nil {
			return err
		}
		s.S3.PathStyle = s.S3.Endpoint != ""
		accessKeyPrompt := promptui.Prompt{Label: "Access Key (empty for the default credential chain)"}
		if s.S3.AccessKey, err = accessKeyPrompt.Run(); err != nil {
			return err
		}
		if s.S3.AccessKey != "" {
			secretKeyPrompt := promptui.Prompt{Label: "Secret Key", Mask: '*', Validate: required("secret key")}
			if s.S3.SecretKey, err = secretKeyPrompt.Run(); err != nil {
				return err
			}
		}

	case "supabase":
		s.Supabase = &supabaseSection{}
		urlPrompt := promptui.Prompt{Label: "Project URL", Validate: requiredURL}
		if s.Supabase.URL, err = urlPrompt.Run(); err != nil {
			return err
		}
		keyPrompt := promptui.Prompt{Label: "API key", Mask: '*', Validate: required("API key")}
		if s.Supabase.Key, err = keyPrompt.Run(); err != nil {
			return err
		}

	case "stowry":
		s.Stowry = &stowrySection{}
		endpointPrompt := promptui.Prompt{Label: "Endpoint URL", Default: "http://localhost:5708", Validate: requiredURL}
		if s.Stowry.Endpoint, err = endpointPrompt.Run(); err != nil {
			return err
		}
		accessKeyPrompt := promptui.Prompt{Label: "Access Key"}
		if s.Stowry.AccessKey, err = accessKeyPrompt.Run(); err != nil {
			return err
		}
		secretKeyPrompt := promptui.Prompt{Label: "Secret Key", Mask: '*'}
		if s.Stowry.SecretKey, err = secretKeyPrompt.Run(); err != nil {
			return err
		}

	case "filesystem":
		s.Filesystem = &filesystemSection{}
		rootPrompt := promptui.Prompt{Label: "Storage directory", Default: "./data", Validate: required("directory")}
		if s.Filesystem.Root, err = rootPrompt.Run(); err != nil {
			return err
		}
	}

	return nil
}

// promptObject asks for an object name, offering a list when the bucket's
// objects are known.
func promptObject(label, def string, objects []string) (string, error) {
	if len(objects) > 0 {
		sel := promptui.Select{
			Label: label,
			Items: objects,
			Size:  10,
		}
		_, name, err := sel.Run()
		return name, err
	}

	prompt := promptui.Prompt{
		Label:   label,
		Default: def,
		Validate: func(input string) error {
			if !formfill.IsValidObjectName(input) {
				return fmt.Errorf("invalid object name: %q", input)
			}
			return nil
		},
	}
	return prompt.Run()
}

// listLocalObjects returns the objects of a filesystem bucket, or nil when
// the bucket cannot be read yet.
func listLocalObjects(ctx context.Context, dir, bucket string) []string {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil
	}
	defer func() { _ = root.Close() }()

	objects, err := filesystem.NewFileStorage(root).Objects(ctx, bucket)
	if err != nil {
		return nil
	}
	return objects
}

func required(what string) func(string) error {
	return func(input string) error {
		if input == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func requiredURL(input string) error {
	if input == "" {
		return errors.New("URL is required")
	}
	return optionalURL(input)
}

func optionalURL(input string) error {
	if input == "" {
		return nil
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
