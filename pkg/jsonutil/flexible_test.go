package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"hello"`, "hello"},
		{"integer", `42`, "42"},
		{"float", `3.5`, "3.5"},
		{"boolean", `true`, "true"},
		{"null", `null`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleStringValue(json.RawMessage(tt.raw)))
		})
	}
}

func TestFlexibleBoolValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		def  bool
		want bool
	}{
		{"true", `true`, false, true},
		{"false", `false`, true, false},
		{"string true", `"true"`, false, true},
		{"string no", `"no"`, true, false},
		{"string one", `"1"`, false, true},
		{"unrecognized string", `"maybe"`, true, true},
		{"nonzero number", `1`, false, true},
		{"zero number", `0`, true, false},
		{"null uses default", `null`, true, true},
		{"absent uses default", ``, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleBoolValue(json.RawMessage(tt.raw), tt.def))
		})
	}
}
