package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webinsights/webinsights/internal/core"
)

func sampleResult() *core.AnalysisResult {
	industry := "Software"
	audience := "Small businesses"
	return &core.AnalysisResult{
		URL:               "https://acme.example/",
		AnalysisTimestamp: "2025-06-01T12:00:00Z",
		CompanyInfo: core.CompanyInfo{
			Industry:             &industry,
			TargetAudience:       &audience,
			CoreProductsServices: []string{"Widgets", "Gadgets"},
		},
		ExtractedAnswers: []core.ExtractedAnswer{
			{Question: "What do they sell?", Answer: "Widgets"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{input: "", expected: FormatTable},
		{input: "table", expected: FormatTable},
		{input: "JSON", expected: FormatJSON},
		{input: " json ", expected: FormatJSON},
		{input: "yaml", wantErr: true},
	}

	for _, tc := range cases {
		format, err := ParseFormat(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.expected, format)
	}
}

func TestJSONFormatterRoundtrips(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatAnalysis(sampleResult())
	require.NoError(t, err)

	var decoded core.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, "https://acme.example/", decoded.URL)
	assert.Equal(t, "Software", *decoded.CompanyInfo.Industry)
}

func TestTableFormatterIncludesProfileAndAnswers(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatAnalysis(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, rendered, "Industry")
	assert.Contains(t, rendered, "Software")
	assert.Contains(t, rendered, "Widgets, Gadgets")
	assert.Contains(t, rendered, "What do they sell?")
}

func TestFormattersHandleNilResult(t *testing.T) {
	for _, format := range []Format{FormatTable, FormatJSON} {
		rendered, err := NewFormatter(format).FormatAnalysis(nil)
		require.NoError(t, err)
		assert.Empty(t, rendered)
	}
}
