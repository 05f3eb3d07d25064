package adjudicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			raw:  `{"decisions": []}`,
			want: `{"decisions": []}`,
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"decisions\": []}\n```",
			want: `{"decisions": []}`,
		},
		{
			name: "fenced without language tag",
			raw:  "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "trailing prose after object",
			raw:  `{"a": 1} I hope this helps!`,
			want: `{"a": 1}`,
		},
		{
			name: "leading prose before object",
			raw:  `Here is the result: {"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "nested objects pick last balanced brace",
			raw:  `{"a": {"b": 2}} trailing {"ignored"`,
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "braces inside strings",
			raw:  `{"a": "closing } inside"} done`,
			want: `{"a": "closing } inside"}`,
		},
		{
			name:    "no object",
			raw:     "no structured output here",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			raw:     `{"a": 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeIntoRejectsMalformedJSON(t *testing.T) {
	var resp complianceResponse
	err := decodeInto(`{"decisions": [}`, &resp)
	assert.Error(t, err)
}

func TestDecodeIntoComplianceResponse(t *testing.T) {
	raw := "```json\n" + `{
		"decisions": [
			{"line_id": "12345-1", "code": "12345", "edit_type": "unit_limit", "modifier": "76", "supports_override": true}
		]
	}` + "\n```\nLet me know if you need anything else."

	var resp complianceResponse
	require.NoError(t, decodeInto(raw, &resp))
	require.Len(t, resp.Decisions, 1)
	assert.Equal(t, EditUnitLimit, resp.Decisions[0].EditType)
	assert.True(t, resp.Decisions[0].OverrideSupported())
}
