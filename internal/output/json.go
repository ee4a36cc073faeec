package output

import (
	"encoding/json"

	"github.com/webinsights/webinsights/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatAnalysis renders an analysis result as JSON.
func (f *JSONFormatter) FormatAnalysis(result *core.AnalysisResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
