package utils

import (
	"strings"

	"github.com/PolarWolf314/conf/internal/ui"
)

// FormatList renders items one per line, each quoted and indented under
// a heading.
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("    - ")
		b.WriteString(ui.Key.Sprint(item))
		b.WriteString("\n")
	}
	return b.String()
}
