// Package jsonutil decodes model-produced JSON values whose types drift from
// the requested shape.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, accepting
// numbers and booleans where a string was asked for. Returns "" for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// FlexibleInt decodes an optional integer that may arrive as a JSON number or
// a numeric string. null, empty and "" yield nil. Fractional values and
// non-numeric text are errors.
func FlexibleInt(raw json.RawMessage) (*int, error) {
	if isNull(raw) {
		return nil, nil
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err != nil {
		var strVal string
		if err := json.Unmarshal(raw, &strVal); err != nil {
			return nil, fmt.Errorf("expected integer, got %s", string(raw))
		}
		strVal = strings.TrimSpace(strVal)
		if strVal == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(strVal)
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q", strVal)
		}
		return &n, nil
	}

	if numVal != math.Trunc(numVal) || math.Abs(numVal) > math.MaxInt32 {
		return nil, fmt.Errorf("expected integer, got %s", string(raw))
	}
	n := int(numVal)
	return &n, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
