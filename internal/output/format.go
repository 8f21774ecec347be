/*
PURPOSE:
  Shared value formatting for the terminal display and the markdown report.

RELATED FILES:
  - internal/output/display.go
  - internal/output/markdown.go
*/

package output

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/daryltucker/dex-bench/internal/model"
)

// FormatMs renders a millisecond duration: "850ms", "12.3s", "2m4.1s".
func FormatMs(ms float64) string {
	d := time.Duration(ms * float64(time.Millisecond))
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// FormatAverage renders a model average, "n/a" when the model had no successes.
func FormatAverage(ms *float64) string {
	if ms == nil {
		return "n/a"
	}
	return FormatMs(*ms)
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Rate renders a float with thousands separators and one decimal.
func Rate(f float64) string {
	return humanize.CommafWithDigits(f, 1)
}

// CategoryLabel is the short tag used in progress lines.
func CategoryLabel(c model.Category) string {
	switch c {
	case model.CategorySummarization:
		return "SUM"
	case model.CategoryStructuredOutput:
		return "JSON"
	default:
		return strings.ToUpper(string(c))
	}
}

// ShortDocument drops the .md extension.
func ShortDocument(name string) string {
	return strings.TrimSuffix(name, ".md")
}
