package formfill_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/formfill"
)

func TestIsValidObjectName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "simple name", input: "template.pdf", valid: true},
		{name: "nested name", input: "forms/2024/w9.pdf", valid: true},
		{name: "spaces allowed", input: "tax forms/w 9.pdf", valid: true},
		{name: "unicode", input: "formulários/inscrição.pdf", valid: true},
		{name: "empty", input: "", valid: false},
		{name: "dot", input: ".", valid: false},
		{name: "slash", input: "/", valid: false},
		{name: "absolute", input: "/etc/passwd", valid: false},
		{name: "trailing slash", input: "forms/", valid: false},
		{name: "parent segment", input: "forms/../secret.pdf", valid: false},
		{name: "dot segment", input: "forms/./w9.pdf", valid: false},
		{name: "empty segment", input: "forms//w9.pdf", valid: false},
		{name: "null byte", input: "w9\x00.pdf", valid: false},
		{name: "control char", input: "w9\n.pdf", valid: false},
		{name: "del char", input: "w9\x7f.pdf", valid: false},
		{name: "invalid utf8", input: "w9\xff.pdf", valid: false},
		{name: "too long", input: strings.Repeat("a", 1025), valid: false},
		{name: "max length", input: strings.Repeat("a", 1024), valid: true},
		{name: "double dots inside name", input: "w9..v2.pdf", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, formfill.IsValidObjectName(tt.input))
		})
	}
}
