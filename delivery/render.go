package delivery

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format: %s", raw)
	}
}

// Extension is the file extension used when the report is archived.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func Render(report Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(report, "", "  ")
	case FormatYAML:
		return yaml.Marshal(report)
	case FormatText:
		return []byte(renderText(report)), nil
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
}

func renderText(report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Brand report: %s\n", report.Brand)
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Mentions: %d (%d enriched)\n", report.Mentions, report.Enriched)

	for _, field := range labelFields {
		counts := report.Breakdown[field]
		if len(counts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(field[:1])+field[1:])
		labels := maps.Keys(counts)
		// most frequent first, alphabetical among equals
		sort.Slice(labels, func(i, j int) bool {
			if counts[labels[i]] != counts[labels[j]] {
				return counts[labels[i]] > counts[labels[j]]
			}
			return labels[i] < labels[j]
		})
		for _, label := range labels {
			fmt.Fprintf(&b, "  %-28s %d\n", label, counts[label])
		}
	}

	for _, section := range report.Summaries {
		fmt.Fprintf(&b, "\n%s Summary (%d mentions)\n", section.Kind, section.Mentions)
		b.WriteString(section.Text)
		b.WriteString("\n")
	}
	return b.String()
}
