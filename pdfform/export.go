package pdfform

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/sagarc03/formfill"
)

// pdfcpu describes a form as JSON grouped by field type. Entries are kept as
// raw maps so attributes this package does not interpret (ids, pages,
// multiline, locks) round-trip unchanged into the fill document.
const (
	keyTextField  = "textfield"
	keyDateField  = "datefield"
	keyRadioGroup = "radiobuttongroup"
	keyCheckBox   = "checkbox"
	keyComboBox   = "combobox"
	keyListBox    = "listbox"
)

var typeKeys = []string{keyTextField, keyDateField, keyRadioGroup, keyCheckBox, keyComboBox, keyListBox}

type exportDoc struct {
	Forms []map[string]json.RawMessage `json:"forms"`
}

type fillDoc struct {
	Forms []map[string][]entry `json:"forms"`
}

// entry is one exported field.
type entry map[string]any

func (e entry) str(key string) string {
	s, _ := e[key].(string)
	return s
}

func (e entry) name() string {
	if name := e.str("name"); name != "" {
		return name
	}
	return e.str("id")
}

func (e entry) options() []string {
	raw, _ := e["options"].([]any)
	opts := make([]string, 0, len(raw))
	for _, o := range raw {
		if s, ok := o.(string); ok {
			opts = append(opts, s)
		}
	}
	return opts
}

func (e entry) pages() []int {
	raw, _ := e["pages"].([]any)
	pages := make([]int, 0, len(raw))
	for _, p := range raw {
		if f, ok := p.(float64); ok {
			pages = append(pages, int(f))
		}
	}
	return pages
}

func (e entry) locked() bool {
	b, _ := e["locked"].(bool)
	return b
}

func (e entry) withValue(value string) entry {
	out := make(entry, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	out["value"] = value
	return out
}

// field is a template field resolved to its kind.
type field struct {
	typeKey string
	kind    formfill.FieldKind
	entry   entry
}

func kindOf(typeKey string) formfill.FieldKind {
	switch typeKey {
	case keyTextField, keyDateField:
		return formfill.KindText
	case keyRadioGroup:
		return formfill.KindChoiceGroup
	default:
		return formfill.KindUnsupported
	}
}

// registry indexes template fields by name. A name can map to more than one
// field when a template repeats it across forms.
type registry map[string][]field

func parseExport(data []byte) (registry, error) {
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode form export: %w", err)
	}

	reg := make(registry)
	for _, form := range doc.Forms {
		for _, typeKey := range typeKeys {
			raw, ok := form[typeKey]
			if !ok {
				continue
			}

			var entries []entry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, fmt.Errorf("decode %s fields: %w", typeKey, err)
			}

			for _, e := range entries {
				name := e.name()
				if name == "" {
					continue
				}
				reg[name] = append(reg[name], field{typeKey: typeKey, kind: kindOf(typeKey), entry: e})
			}
		}
	}

	return reg, nil
}

// fields flattens the registry into the public representation, ordered by
// name.
func (r registry) fields() []formfill.Field {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]formfill.Field, 0, len(names))
	for _, name := range names {
		for _, f := range r[name] {
			ff := formfill.Field{
				Name:   name,
				Kind:   f.kind,
				Pages:  f.entry.pages(),
				Locked: f.entry.locked(),
			}
			switch f.kind {
			case formfill.KindText:
				ff.Value = f.entry.str("value")
			case formfill.KindChoiceGroup:
				ff.Value = f.entry.str("value")
				ff.Options = f.entry.options()
			}
			out = append(out, ff)
		}
	}

	return out
}

// assignment is a value ready to be written to one template field.
type assignment struct {
	name  string
	field field
	value string
}

// resolve matches a submitted value against the template. A non-empty
// reason means the value cannot be written.
func (r registry) resolve(name, value string) (assignments []assignment, reason string) {
	candidates, found := r[name]
	if !found {
		return nil, "field not found in template"
	}

	for _, f := range candidates {
		switch f.kind {
		case formfill.KindText:
			assignments = append(assignments, assignment{name: name, field: f, value: value})
		case formfill.KindChoiceGroup:
			if !slices.Contains(f.entry.options(), value) {
				return nil, fmt.Sprintf("value %q is not an option of the group", value)
			}
			assignments = append(assignments, assignment{name: name, field: f, value: value})
		default:
			return nil, fmt.Sprintf("unsupported field type %s", f.typeKey)
		}
	}

	return assignments, ""
}

func buildFillDoc(assignments []assignment) ([]byte, error) {
	form := make(map[string][]entry)
	for _, a := range assignments {
		form[a.field.typeKey] = append(form[a.field.typeKey], a.field.entry.withValue(a.value))
	}

	data, err := json.Marshal(fillDoc{Forms: []map[string][]entry{form}})
	if err != nil {
		return nil, fmt.Errorf("encode fill document: %w", err)
	}
	return data, nil
}
