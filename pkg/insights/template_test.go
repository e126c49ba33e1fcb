package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectTemplate(t *testing.T) {
	tests := []struct {
		rows int
		want Template
	}{
		{0, TemplateFullResult},
		{3, TemplateFullResult},
		{5, TemplateFullResult},
		{6, TemplateFirstRow},
		{12, TemplateFirstRow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectTemplate(tt.rows), "rows=%d", tt.rows)
	}
}

func TestTemplate_String(t *testing.T) {
	assert.Equal(t, "full_result", TemplateFullResult.String())
	assert.Equal(t, "first_row", TemplateFirstRow.String())
	assert.Equal(t, "unknown", Template(7).String())
}
