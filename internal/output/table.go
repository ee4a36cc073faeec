package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/webinsights/webinsights/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatAnalysis renders a company profile as a table, followed by any
// question answers.
func (f *TableFormatter) FormatAnalysis(result *core.AnalysisResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(result.URL)
	t.AppendHeader(table.Row{"Field", "Value"})

	info := result.CompanyInfo
	t.AppendRow(table.Row{"Industry", orUnknown(info.Industry)})
	t.AppendRow(table.Row{"Company size", orUnknown(info.CompanySize)})
	t.AppendRow(table.Row{"Location", orUnknown(info.Location)})
	t.AppendRow(table.Row{"Products / services", joinOrUnknown(info.CoreProductsServices)})
	t.AppendRow(table.Row{"Unique selling proposition", orUnknown(info.UniqueSellingProposition)})
	t.AppendRow(table.Row{"Target audience", orUnknown(info.TargetAudience)})

	if contact := info.ContactInfo; contact != nil {
		t.AppendRow(table.Row{"Email", orUnknown(contact.Email)})
		t.AppendRow(table.Row{"Phone", orUnknown(contact.Phone)})
		if len(contact.SocialMedia) > 0 {
			links := make([]string, 0, len(contact.SocialMedia))
			for platform, url := range contact.SocialMedia {
				links = append(links, platform+": "+url)
			}
			t.AppendRow(table.Row{"Social media", strings.Join(links, "\n")})
		}
	}

	rendered := t.Render()

	if len(result.ExtractedAnswers) > 0 {
		qa := table.NewWriter()
		qa.SetStyle(table.StyleRounded)
		qa.AppendHeader(table.Row{"Question", "Answer"})
		for _, answer := range result.ExtractedAnswers {
			qa.AppendRow(table.Row{answer.Question, answer.Answer})
		}
		rendered += "\n" + qa.Render()
	}

	return rendered, nil
}

func orUnknown(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "-"
	}
	return *value
}

func joinOrUnknown(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
