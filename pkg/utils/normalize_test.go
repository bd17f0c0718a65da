package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBool(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"string true", "true", true},
		{"string false", "false", false},
		{"string upper", "TRUE", true},
		{"string mixed", "True", true},
		{"string padded", "  true  ", true},
		{"string yes is not true", "yes", false},
		{"string one is not true", "1", false},
		{"empty string", "", false},
		{"nil", nil, false},
		{"int nonzero", 1, true},
		{"int zero", 0, false},
		{"int64 nonzero", int64(7), true},
		{"float nonzero", 0.5, true},
		{"float zero", 0.0, false},
		{"unknown type", []string{"true"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeBool(tc.in))
		})
	}
}
