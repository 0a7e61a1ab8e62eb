package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall. This makes split-pane rendering stable when using lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		ln := truncateText(lines[i], width)
		if w := xansi.StringWidth(ln); w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}

	return strings.Join(lines, "\n")
}

// truncateText cuts s to width columns, marking the cut with an ellipsis.
func truncateText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Truncate(s, width, "…")
}

// joinColumns lays panes side by side with gap spaces between them.
func joinColumns(panes []string, gap int) string {
	if len(panes) == 0 {
		return ""
	}
	split := make([][]string, len(panes))
	rows := 0
	for i, p := range panes {
		split[i] = strings.Split(p, "\n")
		if len(split[i]) > rows {
			rows = len(split[i])
		}
	}
	sep := strings.Repeat(" ", max(gap, 0))
	var b strings.Builder
	for r := 0; r < rows; r++ {
		for i := range split {
			if i > 0 {
				b.WriteString(sep)
			}
			if r < len(split[i]) {
				b.WriteString(split[i][r])
			} else if len(split[i]) > 0 {
				b.WriteString(strings.Repeat(" ", xansi.StringWidth(split[i][0])))
			}
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wrapWords wraps plain text to maxW columns, hard-cutting words wider than a line.
func wrapWords(s string, maxW int) []string {
	if maxW <= 0 {
		return []string{""}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 2)
	cur := ""
	for _, w := range words {
		for xansi.StringWidth(w) > maxW {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, xansi.Cut(w, 0, maxW))
			w = xansi.Cut(w, maxW, xansi.StringWidth(w))
		}
		if w == "" {
			continue
		}
		switch {
		case cur == "":
			cur = w
		case xansi.StringWidth(cur)+1+xansi.StringWidth(w) <= maxW:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}
