package tui

import (
	"os"
	"strings"
)

// Terminal apps can't change the user's font. Instead the UI picks between
// Unicode and ASCII glyphs for its affordances.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var currentGlyphs = glyphSetUnicode

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MOPS_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		currentGlyphs = glyphSetUnicode
	case "ascii":
		currentGlyphs = glyphSetASCII
	}
}

func glyphSubtasks() string {
	if currentGlyphs == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphBullet() string {
	if currentGlyphs == glyphSetASCII {
		return "*"
	}
	return "•"
}

func glyphArrow() string {
	if currentGlyphs == glyphSetASCII {
		return "->"
	}
	return "→"
}

func glyphHRule() string {
	if currentGlyphs == glyphSetASCII {
		return "-"
	}
	return "─"
}

func glyphDrag() string {
	if currentGlyphs == glyphSetASCII {
		return "#"
	}
	return "⠿"
}
