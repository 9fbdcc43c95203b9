package formfill_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/formfill"
)

func TestValidate(t *testing.T) {
	schema := formfill.FieldSchema{
		"sex":     {"M", "F"},
		"country": {"US", "CA", "MX"},
	}

	tests := []struct {
		name      string
		submitted formfill.FormValues
		want      []formfill.Violation
	}{
		{
			name:      "all values allowed",
			submitted: formfill.FormValues{"sex": "M", "country": "CA"},
		},
		{
			name:      "fields outside schema are ignored",
			submitted: formfill.FormValues{"name": "Alice", "sex": "F"},
		},
		{
			name:      "schema fields missing from submission are ignored",
			submitted: formfill.FormValues{"name": "Alice"},
		},
		{
			name:      "empty submission",
			submitted: formfill.FormValues{},
		},
		{
			name:      "empty value is treated as unset",
			submitted: formfill.FormValues{"sex": ""},
		},
		{
			name:      "single violation",
			submitted: formfill.FormValues{"sex": "X", "country": "US"},
			want: []formfill.Violation{
				{Field: "sex", Value: "X", Allowed: []string{"M", "F"}},
			},
		},
		{
			name:      "all violations are reported in field order",
			submitted: formfill.FormValues{"sex": "X", "country": "FR", "name": "Bob"},
			want: []formfill.Violation{
				{Field: "country", Value: "FR", Allowed: []string{"US", "CA", "MX"}},
				{Field: "sex", Value: "X", Allowed: []string{"M", "F"}},
			},
		},
		{
			name:      "membership is case sensitive",
			submitted: formfill.FormValues{"sex": "m"},
			want: []formfill.Violation{
				{Field: "sex", Value: "m", Allowed: []string{"M", "F"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formfill.Validate(schema, tt.submitted)

			if diff := cmp.Diff(tt.want, result.Violations); diff != "" {
				t.Errorf("violations mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tt.want) == 0, result.Valid())
		})
	}
}

func TestValidate_NilSchema(t *testing.T) {
	result := formfill.Validate(nil, formfill.FormValues{"sex": "X"})
	assert.True(t, result.Valid())
}

func TestValidate_OrderIndependent(t *testing.T) {
	schema := formfill.FieldSchema{
		"a": {"1"},
		"b": {"1"},
		"c": {"1"},
		"d": {"1"},
	}

	// Map iteration order differs between runs; repeated validation of
	// equivalent inputs built in different insertion orders must agree.
	first := formfill.FormValues{}
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		first[k] = "2"
	}
	second := formfill.FormValues{}
	for _, k := range []string{"e", "d", "c", "b", "a"} {
		second[k] = "2"
	}

	want := formfill.Validate(schema, first)
	for range 20 {
		got := formfill.Validate(schema, second)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("result depends on key order (-want +got):\n%s", diff)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, want.Fields())
}

func TestParseSchema_JSON(t *testing.T) {
	schema, err := formfill.ParseSchema("fields.json", []byte(`{"sex":["M","F"],"empty":[]}`))
	require.NoError(t, err)

	assert.Equal(t, formfill.FieldSchema{
		"sex":   {"M", "F"},
		"empty": {},
	}, schema)
}

func TestParseSchema_YAML(t *testing.T) {
	data := []byte("sex:\n  - M\n  - F\ncountry: [US, CA]\n")

	for _, name := range []string{"fields.yaml", "fields.YML"} {
		t.Run(name, func(t *testing.T) {
			schema, err := formfill.ParseSchema(name, data)
			require.NoError(t, err)
			assert.Equal(t, []string{"M", "F"}, schema["sex"])
			assert.Equal(t, []string{"US", "CA"}, schema["country"])
		})
	}
}

func TestParseSchema_Invalid(t *testing.T) {
	tests := []struct {
		name string
		obj  string
		data string
	}{
		{name: "not json", obj: "fields.json", data: "not json"},
		{name: "array instead of object", obj: "fields.json", data: `["M","F"]`},
		{name: "non-string values", obj: "fields.json", data: `{"sex":[1,2]}`},
		{name: "null document", obj: "fields.json", data: `null`},
		{name: "bad yaml", obj: "fields.yaml", data: "sex: [M, F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formfill.ParseSchema(tt.obj, []byte(tt.data))
			assert.ErrorIs(t, err, formfill.ErrInvalidInput)
		})
	}
}

func TestDecodeFormValues(t *testing.T) {
	values, err := formfill.DecodeFormValues([]byte(`{"name":"Alice","sex":null,"note":""}`))
	require.NoError(t, err)

	assert.Equal(t, formfill.FormValues{"name": "Alice", "sex": "", "note": ""}, values)
}

func TestDecodeFormValues_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "array", body: `["a"]`},
		{name: "null", body: `null`},
		{name: "number value", body: `{"age":42}`},
		{name: "object value", body: `{"name":{"first":"A"}}`},
		{name: "bool value", body: `{"agree":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formfill.DecodeFormValues([]byte(tt.body))
			assert.ErrorIs(t, err, formfill.ErrInvalidInput)
		})
	}
}
