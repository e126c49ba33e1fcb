package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/jsonutil"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// rawSkeleton mirrors the extraction response before validation.
type rawSkeleton struct {
	Tables  json.RawMessage `json:"tables"`
	Columns json.RawMessage `json:"columns"`
	Filters json.RawMessage `json:"filters"`
	OrderBy json.RawMessage `json:"order_by"`
	Limit   json.RawMessage `json:"limit"`
}

// DecodeSkeleton validates an extraction response body into an EntitySkeleton.
// A missing tables key yields an empty table list; emptiness is the caller's
// concern.
func DecodeSkeleton(body string) (*models.EntitySkeleton, error) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var raw rawSkeleton
	dec := json.NewDecoder(strings.NewReader(trimmed))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected content after JSON object")
	}

	tables, err := decodeStrings(raw.Tables)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	columns, err := decodeStrings(raw.Columns)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	filters, err := decodeFilters(raw.Filters)
	if err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}
	orderBy, err := decodeOrderBy(raw.OrderBy)
	if err != nil {
		return nil, fmt.Errorf("order_by: %w", err)
	}
	limit, err := jsonutil.FlexibleInt(raw.Limit)
	if err != nil {
		return nil, fmt.Errorf("limit: %w", err)
	}
	if limit != nil && *limit < 0 {
		return nil, fmt.Errorf("limit: must not be negative, got %d", *limit)
	}

	return &models.EntitySkeleton{
		Tables:  tables,
		Columns: columns,
		Filters: filters,
		OrderBy: orderBy,
		Limit:   limit,
	}, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// decodeStrings accepts a list of strings (numbers are stringified) or a
// single bare string.
func decodeStrings(raw json.RawMessage) ([]string, error) {
	if isAbsent(raw) {
		return []string{}, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return []string{}, nil
		}
		return []string{single}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("expected a list of strings")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
			return nil, fmt.Errorf("expected a list of strings, got %s", string(trimmed))
		}
		if s := jsonutil.FlexibleStringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// decodeFilters accepts {col: {operator|op, value}} or {col: scalar}, where a
// bare scalar means equality.
func decodeFilters(raw json.RawMessage) (map[string]models.Filter, error) {
	filters := map[string]models.Filter{}
	if isAbsent(raw) {
		return filters, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("expected an object keyed by column")
	}

	for col, entry := range entries {
		trimmed := bytes.TrimSpace(entry)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			value, err := decodeValue(entry)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", col, err)
			}
			filters[col] = models.Filter{Operator: "=", Value: value}
			continue
		}

		var obj struct {
			Operator json.RawMessage `json:"operator"`
			Op       json.RawMessage `json:"op"`
			Value    json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return nil, fmt.Errorf("%s: %w", col, err)
		}

		op := jsonutil.FlexibleStringValue(obj.Operator)
		if op == "" {
			op = jsonutil.FlexibleStringValue(obj.Op)
		}
		if op == "" {
			op = "="
		}
		value, err := decodeValue(obj.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", col, err)
		}
		filters[col] = models.Filter{Operator: op, Value: value}
	}
	return filters, nil
}

// decodeOrderBy accepts a list of {column, direction|dir} objects or bare
// column strings, or a single such item.
func decodeOrderBy(raw json.RawMessage) ([]models.OrderTerm, error) {
	terms := []models.OrderTerm{}
	if isAbsent(raw) {
		return terms, nil
	}

	items := []json.RawMessage{raw}
	if trimmed := bytes.TrimSpace(raw); trimmed[0] == '[' {
		items = nil
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	}

	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '"':
			var col string
			if err := json.Unmarshal(item, &col); err != nil {
				return nil, err
			}
			terms = append(terms, models.OrderTerm{Column: col})
		case '{':
			var obj struct {
				Column    json.RawMessage `json:"column"`
				Direction json.RawMessage `json:"direction"`
				Dir       json.RawMessage `json:"dir"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				return nil, err
			}
			col := jsonutil.FlexibleStringValue(obj.Column)
			if col == "" {
				return nil, fmt.Errorf("order term without column: %s", string(trimmed))
			}
			dir := jsonutil.FlexibleStringValue(obj.Direction)
			if dir == "" {
				dir = jsonutil.FlexibleStringValue(obj.Dir)
			}
			terms = append(terms, models.OrderTerm{Column: col, Direction: strings.ToLower(dir)})
		default:
			return nil, fmt.Errorf("unexpected order term %s", string(trimmed))
		}
	}
	return terms, nil
}

// decodeValue decodes a filter value into plain Go values, with numbers as
// float64 so they render consistently.
func decodeValue(raw json.RawMessage) (any, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
