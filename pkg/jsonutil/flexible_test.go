package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{"string", json.RawMessage(`"total_claim_charge"`), "total_claim_charge"},
		{"integer", json.RawMessage(`42`), "42"},
		{"float", json.RawMessage(`3.14`), "3.14"},
		{"boolean", json.RawMessage(`true`), "true"},
		{"null", json.RawMessage(`null`), ""},
		{"nil", nil, ""},
		{"large integer", json.RawMessage(`9007199254740992`), "9007199254740992"},
		{"object falls back to raw", json.RawMessage(`{"key":"value"}`), `{"key":"value"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleStringValue(tt.input))
		})
	}
}

func TestFlexibleInt(t *testing.T) {
	ten := 10
	zero := 0
	tests := []struct {
		name    string
		input   json.RawMessage
		want    *int
		wantErr bool
	}{
		{"number", json.RawMessage(`10`), &ten, false},
		{"integral float", json.RawMessage(`10.0`), &ten, false},
		{"zero", json.RawMessage(`0`), &zero, false},
		{"numeric string", json.RawMessage(`"10"`), &ten, false},
		{"padded numeric string", json.RawMessage(`" 10 "`), &ten, false},
		{"null", json.RawMessage(`null`), nil, false},
		{"absent", nil, nil, false},
		{"empty string", json.RawMessage(`""`), nil, false},
		{"fraction", json.RawMessage(`2.5`), nil, true},
		{"word", json.RawMessage(`"ten"`), nil, true},
		{"array", json.RawMessage(`[10]`), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlexibleInt(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
