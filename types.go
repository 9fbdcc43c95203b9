package formfill

import (
	"fmt"
	"slices"
)

// FieldSchema maps a form field name to the values it may take.
type FieldSchema map[string][]string

// Allows reports whether value is in the allowed set for field. The second
// return value is false when the schema does not constrain field at all.
func (s FieldSchema) Allows(field, value string) (allowed bool, constrained bool) {
	set, ok := s[field]
	if !ok {
		return true, false
	}
	return slices.Contains(set, value), true
}

// FormValues maps a form field name to the submitted value. A JSON null is
// stored as the empty string; both mean "leave the field unset".
type FormValues map[string]string

// Violation describes a submitted value outside the schema's allowed set.
type Violation struct {
	Field   string   `json:"field"`
	Value   string   `json:"value"`
	Allowed []string `json:"allowed"`
}

// ValidationResult holds every violation found for one submission.
type ValidationResult struct {
	Violations []Violation
}

// Valid reports whether the submission passed validation.
func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

// Fields returns the names of the violating fields in order.
func (r ValidationResult) Fields() []string {
	names := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		names = append(names, v.Field)
	}
	return names
}

// FieldKind is the structural kind of a form field in a template.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindChoiceGroup FieldKind = "choice_group"
	KindUnsupported FieldKind = "unsupported"
)

func (k FieldKind) IsValid() bool {
	switch k {
	case KindText, KindChoiceGroup, KindUnsupported:
		return true
	default:
		return false
	}
}

func ParseFieldKind(s string) (FieldKind, error) {
	kind := FieldKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid field kind: %s (valid kinds: text, choice_group, unsupported)", s)
	}
	return kind, nil
}

// Field describes a named field found in a template.
type Field struct {
	Name    string    `json:"name"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Value   string    `json:"value"`
	Pages   []int     `json:"pages,omitempty"`
	Locked  bool      `json:"locked"`
}

// SkippedField records a submitted value that was not written to the form.
type SkippedField struct {
	Field  string
	Reason string
}

// FillReport lists what a fill operation applied and skipped.
type FillReport struct {
	Applied []string
	Skipped []SkippedField
}
