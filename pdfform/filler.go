// Package pdfform reads and fills AcroForm fields in PDF templates using
// pdfcpu.
//
// Fields are resolved to one of the kinds in formfill.FieldKind from their
// structural type in the document: text (and date) fields are KindText,
// radio button groups are KindChoiceGroup, everything else is
// KindUnsupported. Values for unknown or unsupported fields, and group
// values that are not one of the group's options, are skipped and reported
// in the FillReport rather than failing the fill.
//
// Date fields are listed as KindText, but pdfcpu checks their value against
// the field's date format: a value that does not match is skipped like any
// other value pdfcpu rejects.
package pdfform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/sagarc03/formfill"
)

var (
	configOnce sync.Once
	configDir  string
	configErr  error
)

// Filler implements formfill.FormFiller. It is stateless and safe for
// concurrent use.
type Filler struct{}

// NewFiller creates a Filler.
//
// pdfcpu keeps its configuration and the Unicode font it embeds for text
// outside Latin-1 in a config directory. The first call installs that
// directory under dir, or under the user cache directory (falling back to the
// temp directory) when dir is empty. Later calls reuse the first location.
func NewFiller(dir string) (*Filler, error) {
	configOnce.Do(func() {
		configDir, configErr = installConfig(dir)
	})
	if configErr != nil {
		return nil, fmt.Errorf("new filler: %w", configErr)
	}

	slog.Debug("pdfcpu config ready", "dir", configDir)
	return &Filler{}, nil
}

func installConfig(dir string) (string, error) {
	candidates := []string{dir}
	if dir == "" {
		candidates = candidates[:0]
		if cache, err := os.UserCacheDir(); err == nil {
			candidates = append(candidates, filepath.Join(cache, "formfill"))
		}
		candidates = append(candidates, filepath.Join(os.TempDir(), "formfill"))
	}

	var errs []error
	for _, candidate := range candidates {
		if err := os.MkdirAll(candidate, 0o750); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := api.EnsureDefaultConfigAt(candidate); err != nil {
			errs = append(errs, fmt.Errorf("install pdfcpu config at %s: %w", candidate, err))
			continue
		}
		return candidate, nil
	}

	return "", errors.Join(errs...)
}

// newConfiguration returns a fresh pdfcpu configuration. pdfcpu mutates the
// configuration while processing, so one is built per call.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// load parses template and returns its field registry. A template without an
// interactive form yields an empty registry.
func load(template []byte) (registry, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(template), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read template: %w: %w", formfill.ErrForm, err)
	}

	rootDict, err := pdfCtx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w: %w", formfill.ErrForm, err)
	}

	if _, found := rootDict.Find("AcroForm"); !found {
		return registry{}, nil
	}

	var buf bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(template), &buf, "template", newConfiguration()); err != nil {
		return nil, fmt.Errorf("export form: %w: %w", formfill.ErrForm, err)
	}

	reg, err := parseExport(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", formfill.ErrForm, err)
	}

	return reg, nil
}

// Fields lists the template's named fields ordered by name.
func (f *Filler) Fields(ctx context.Context, template []byte) ([]formfill.Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reg, err := load(template)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	return reg.fields(), nil
}

// Fill writes values into template and returns the saved document.
//
// Empty values are skipped. A value for a name the template does not define,
// for a field kind that cannot take text, or outside a group's options is
// logged and reported as skipped. All writable values are applied in one
// pass; if pdfcpu rejects that pass, values are applied one at a time so a
// single bad value only skips its own field.
//
// When nothing is writable the template is returned unchanged.
func (f *Filler) Fill(ctx context.Context, template []byte, values formfill.FormValues) ([]byte, formfill.FillReport, error) {
	var report formfill.FillReport

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	reg, err := load(template)
	if err != nil {
		return nil, report, fmt.Errorf("fill form: %w", err)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var pending [][]assignment
	for _, name := range names {
		value := values[name]
		if value == "" {
			continue
		}

		assignments, reason := reg.resolve(name, value)
		if reason != "" {
			slog.Warn("could not set form field", "field", name, "reason", reason)
			report.Skipped = append(report.Skipped, formfill.SkippedField{Field: name, Reason: reason})
			continue
		}
		pending = append(pending, assignments)
	}

	if len(pending) == 0 {
		return bytes.Clone(template), report, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	var all []assignment
	for _, group := range pending {
		all = append(all, group...)
	}

	out, err := apply(template, all)
	if err == nil {
		for _, group := range pending {
			report.Applied = append(report.Applied, group[0].name)
		}
		return out, report, nil
	}

	slog.Debug("batch fill rejected, applying fields individually", "err", err)

	current := template
	for _, group := range pending {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		next, err := apply(current, group)
		if err != nil {
			slog.Warn("could not set form field", "field", group[0].name, "err", err)
			report.Skipped = append(report.Skipped, formfill.SkippedField{Field: group[0].name, Reason: err.Error()})
			continue
		}

		current = next
		report.Applied = append(report.Applied, group[0].name)
	}

	if len(report.Applied) == 0 {
		return bytes.Clone(template), report, nil
	}

	return current, report, nil
}

func apply(template []byte, assignments []assignment) ([]byte, error) {
	doc, err := buildFillDoc(assignments)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := api.FillForm(bytes.NewReader(template), bytes.NewReader(doc), &out, newConfiguration()); err != nil {
		return nil, fmt.Errorf("pdfcpu fill: %w", err)
	}

	return out.Bytes(), nil
}
