package console

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// StatusKind classifies a status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusOK
	StatusWarn
	StatusError
)

type kindStyle struct {
	tag   string
	color string
}

var kindStyles = map[StatusKind]kindStyle{
	StatusInfo:  {tag: "INFO", color: ansiBlue},
	StatusOK:    {tag: "OK", color: ansiGreen},
	StatusWarn:  {tag: "WARN", color: ansiYellow},
	StatusError: {tag: "ERROR", color: ansiRed},
}

// statusLabelWidth fits the longest readiness check name.
const statusLabelWidth = 20

// StatusLine renders "  label:   [KIND] detail" with the label padded so
// consecutive lines line up.
func StatusLine(label string, kind StatusKind, detail string, colorize bool) string {
	style, ok := kindStyles[kind]
	if !ok {
		style = kindStyles[StatusInfo]
	}
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", style.tag)
	if detail != "" {
		line += " " + detail
	}
	return paint(line, style.color, colorize)
}

// SectionHeader returns a "== title ==" line and a dashed rule of equal width.
func SectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", text.StringWidthWithoutEscSequences(heading))
	return []string{paint(heading, ansiBlue, colorize), paint(rule, ansiBlue, colorize)}
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// Alignment selects a table column alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable draws rows under headers with rounded borders. Missing cells
// render empty and extra cells are dropped.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if i < len(aligns) && aligns[i] == AlignRight {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}
