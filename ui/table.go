package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"intake/model"
	"intake/storage"
)

// RenderRecognition formats a recognition result for the terminal.
func RenderRecognition(r model.RecognitionResult, width int) string {
	var b strings.Builder

	title := "Recognition"
	if r.SuggestedType != "" {
		title += ": " + r.SuggestedType
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	conf := fmt.Sprintf("%.0f%%", r.Confidence*100)
	b.WriteString(LabelStyle.Render("Confidence: ") + ConfidenceStyle(r.Confidence).Render(conf))
	if r.FromCache {
		b.WriteString(DimStyle.Render(" (cached)"))
	}
	b.WriteString("\n")

	if tags := FormatTags(r.KeywordsAndTags); tags != "" {
		b.WriteString(LabelStyle.Render("Tags: ") + tags + "\n")
	}

	if len(r.RecognizedData) > 0 {
		b.WriteString(LabelStyle.Render("Data:") + "\n")
		for _, v := range r.RecognizedData {
			for i, line := range wrapText(formatValue(v), width-4) {
				prefix := "  - "
				if i > 0 {
					prefix = "    "
				}
				b.WriteString(prefix + line + "\n")
			}
		}
	}

	if r.VerboseData != "" {
		b.WriteString("\n")
		b.WriteString(RenderMarkdown(r.VerboseData, width))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderEntityTable lists entities one per row.
func RenderEntityTable(entities []model.Entity, width int) string {
	if len(entities) == 0 {
		return DimStyle.Render("No entities found.") + "\n"
	}

	const idW, typeW, dateW = 8, 10, 16
	nameW := width - idW - typeW - dateW - 6
	if nameW < 10 {
		nameW = 10
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(row([]string{"ID", "TYPE", "NAME", "UPDATED"}, []int{idW, typeW, nameW, dateW})))
	b.WriteString("\n")
	for _, e := range entities {
		b.WriteString(row([]string{
			e.ID,
			e.Type,
			e.Name,
			e.UpdatedAt.Local().Format("2006-01-02 15:04"),
		}, []int{idW, typeW, nameW, dateW}))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMatches lists search hits with a description preview.
func RenderMatches(matches []storage.EntityMatch, width int) string {
	if len(matches) == 0 {
		return DimStyle.Render("No matches.") + "\n"
	}

	var b strings.Builder
	for _, m := range matches {
		b.WriteString(TitleStyle.Render(Truncate(m.Entity.Name, width-12)))
		b.WriteString(" " + DimStyle.Render("["+m.Entity.Type+"] "+shortID(m.Entity.ID)) + "\n")
		if m.Preview != "" {
			b.WriteString("  " + DimStyle.Render(Truncate(m.Preview, width-2)) + "\n")
		}
	}
	return b.String()
}

// RenderEntity shows a single entity in full.
func RenderEntity(e model.Entity) (string, error) {
	data, err := yaml.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to render entity: %w", err)
	}
	return TitleStyle.Render(e.Name) + "\n" + string(data), nil
}

// Truncate shortens s to width display cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func row(cols []string, widths []int) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		c = strings.ReplaceAll(c, "\n", " ")
		cells[i] = runewidth.FillRight(Truncate(c, widths[i]), widths[i])
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case map[string]any, []any:
		data, err := yaml.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimRight(string(data), "\n")
	default:
		return fmt.Sprint(t)
	}
}

func wrapText(text string, width int) []string {
	if width < 10 {
		width = 10
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(para, width)...)
	}
	return lines
}

func wrapLine(text string, width int) []string {
	if runewidth.StringWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		currentWidth := runewidth.StringWidth(current)

		if wordWidth > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			for wordWidth > width {
				chunk := runewidth.Truncate(word, width, "")
				lines = append(lines, chunk)
				word = word[len(chunk):]
				wordWidth = runewidth.StringWidth(word)
			}
			current = word
		} else if currentWidth+wordWidth+1 <= width || current == "" {
			if current != "" {
				current += " "
			}
			current += word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
