package tui

import "testing"

func applyGlyphs(t *testing.T, g glyphSet) {
	t.Helper()
	prev := currentGlyphs
	currentGlyphs = g
	t.Cleanup(func() { currentGlyphs = prev })
}

func TestGlyphs_FromEnv(t *testing.T) {
	applyGlyphs(t, glyphSetUnicode)

	t.Setenv("MOPS_TUI_GLYPHS", "ascii")
	applyGlyphPreference()
	if currentGlyphs != glyphSetASCII || glyphArrow() != "->" {
		t.Fatalf("expected ascii glyphs; got %v", currentGlyphs)
	}

	t.Setenv("MOPS_TUI_GLYPHS", "unicode")
	applyGlyphPreference()
	if currentGlyphs != glyphSetUnicode || glyphArrow() != "→" {
		t.Fatalf("expected unicode glyphs; got %v", currentGlyphs)
	}

	// Unknown values keep the current set.
	currentGlyphs = glyphSetASCII
	t.Setenv("MOPS_TUI_GLYPHS", "bogus")
	applyGlyphPreference()
	if currentGlyphs != glyphSetASCII {
		t.Fatalf("expected unknown to be ignored; got %v", currentGlyphs)
	}
}
