package formfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ObjectStore defines the interface for fetching objects from a bucket.
// Implementations can use GCS, S3, Supabase storage, a Stowry server or a
// local directory.
//
// Implementations must be safe for concurrent use and must not cache results:
// every call reflects the currently stored content.
type ObjectStore interface {
	// Fetch reads the full contents of an object.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - bucket: The bucket holding the object
	//   - name: The object name within the bucket
	//
	// Returns:
	//   - []byte: The object contents
	//   - error: ErrNotFound if the bucket or object doesn't exist, or other
	//     storage and transport errors
	Fetch(ctx context.Context, bucket, name string) ([]byte, error)
}

// FormFiller defines the interface for reading and filling PDF forms.
type FormFiller interface {
	// Fill sets values on the fields of template and returns the serialized
	// document. Unknown fields and values a field cannot take are skipped and
	// reported, never fatal. A template that cannot be parsed or saved
	// returns an error wrapping ErrForm.
	Fill(ctx context.Context, template []byte, values FormValues) ([]byte, FillReport, error)

	// Fields lists the named fields of template.
	Fields(ctx context.Context, template []byte) ([]Field, error)
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	Bucket         string
	TemplateObject string
	SchemaObject   string
	FetchTimeout   time.Duration // Timeout for each object fetch (default: 10s)
}

// Validate checks that the bucket and object names are set and usable.
func (c ServiceConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("validate service config: %w: bucket cannot be empty", ErrConfig)
	}
	if !IsValidObjectName(c.TemplateObject) {
		return fmt.Errorf("validate service config: %w: invalid template object name: %q", ErrConfig, c.TemplateObject)
	}
	if !IsValidObjectName(c.SchemaObject) {
		return fmt.Errorf("validate service config: %w: invalid schema object name: %q", ErrConfig, c.SchemaObject)
	}
	return nil
}

// Service runs the validate-and-fill pipeline. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	store        ObjectStore
	filler       FormFiller
	bucket       string
	template     string
	schema       string
	fetchTimeout time.Duration
}

func NewService(store ObjectStore, filler FormFiller, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("new service: store cannot be nil")
	}
	if filler == nil {
		return nil, errors.New("new service: filler cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}

	return &Service{
		store:        store,
		filler:       filler,
		bucket:       cfg.Bucket,
		template:     cfg.TemplateObject,
		schema:       cfg.SchemaObject,
		fetchTimeout: fetchTimeout,
	}, nil
}

// fetch reads one object under the configured fetch timeout. Every failure
// is wrapped with ErrStorage; a missing object also matches ErrNotFound.
func (s *Service) fetch(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	data, err := s.store.Fetch(ctx, s.bucket, name)
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return nil, fmt.Errorf("fetch %s/%s: %w", s.bucket, name, err)
		}
		return nil, fmt.Errorf("fetch %s/%s: %w: %w", s.bucket, name, ErrStorage, err)
	}

	slog.Debug("fetched object", "bucket", s.bucket, "object", name, "bytes", len(data), "took", time.Since(start))
	return data, nil
}

// Schema fetches and parses the validation schema object.
//
// Error types returned:
//   - *PhaseError with PhaseSchema wrapping ErrStorage: fetch failed
//   - *PhaseError with PhaseSchema wrapping ErrInvalidInput: object is not a
//     valid schema document
func (s *Service) Schema(ctx context.Context) (FieldSchema, error) {
	data, err := s.fetch(ctx, s.schema)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseSchema, Err: err}
	}

	schema, err := ParseSchema(s.schema, data)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseSchema, Err: err}
	}

	return schema, nil
}

// Validate fetches the current schema and checks values against it.
// A non-nil error means the schema could not be loaded; violations are
// reported through the returned ValidationResult.
func (s *Service) Validate(ctx context.Context, values FormValues) (ValidationResult, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	return Validate(schema, values), nil
}

// Template fetches the PDF template object.
func (s *Service) Template(ctx context.Context) ([]byte, error) {
	data, err := s.fetch(ctx, s.template)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseTemplate, Err: err}
	}
	return data, nil
}

// Fill fetches the template and writes values into it. It does not
// validate; callers run Validate first (the HTTP layer does this in
// middleware).
//
// Error types returned:
//   - *PhaseError with PhaseTemplate wrapping ErrStorage: template fetch failed
//   - *PhaseError with PhaseFill wrapping ErrForm: template could not be
//     parsed, filled or saved
func (s *Service) Fill(ctx context.Context, values FormValues) ([]byte, error) {
	template, err := s.Template(ctx)
	if err != nil {
		return nil, err
	}

	out, report, err := s.filler.Fill(ctx, template, values)
	if err != nil {
		if !errors.Is(err, ErrForm) {
			err = fmt.Errorf("%w: %w", ErrForm, err)
		}
		return nil, &PhaseError{Phase: PhaseFill, Err: err}
	}

	for _, skipped := range report.Skipped {
		slog.Warn("form field skipped", "field", skipped.Field, "reason", skipped.Reason)
	}
	slog.Info("filled template",
		"template", s.template,
		"applied", len(report.Applied),
		"skipped", len(report.Skipped),
		"bytes", len(out),
	)

	return out, nil
}

// Process runs the whole pipeline: validate, then fill. A rejected
// submission returns a *ValidationError.
func (s *Service) Process(ctx context.Context, values FormValues) ([]byte, error) {
	result, err := s.Validate(ctx, values)
	if err != nil {
		return nil, err
	}

	if !result.Valid() {
		return nil, &ValidationError{Violations: result.Violations}
	}

	return s.Fill(ctx, values)
}

// Fields lists the named fields of the current template.
func (s *Service) Fields(ctx context.Context) ([]Field, error) {
	template, err := s.Template(ctx)
	if err != nil {
		return nil, err
	}

	fields, err := s.filler.Fields(ctx, template)
	if err != nil {
		if !errors.Is(err, ErrForm) {
			err = fmt.Errorf("%w: %w", ErrForm, err)
		}
		return nil, &PhaseError{Phase: PhaseFill, Err: err}
	}

	return fields, nil
}
