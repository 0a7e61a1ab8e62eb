package tui

import (
	"os"
	"strconv"
	"strings"

	"mops-cli/internal/model"
	"mops-cli/internal/notify"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds.
// Colors are lipgloss.AdaptiveColor; "faint" is only applied on dark
// backgrounds (faint text on light terminals often becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

type palette struct {
	Muted      lipgloss.AdaptiveColor
	SelectedBg lipgloss.AdaptiveColor
	SelectedFg lipgloss.AdaptiveColor
	SurfaceFg  lipgloss.AdaptiveColor
	ControlBg  lipgloss.AdaptiveColor
	Accent     lipgloss.AdaptiveColor
	AccentFg   lipgloss.AdaptiveColor
	Good       lipgloss.AdaptiveColor
	Warn       lipgloss.AdaptiveColor
	Bad        lipgloss.AdaptiveColor
}

var profiles = map[string]palette{
	"default": {
		Muted:      ac("240", "243"),
		SelectedBg: ac("#e9e9e9", "#262626"),
		SelectedFg: ac("235", "255"),
		SurfaceFg:  ac("235", "252"),
		ControlBg:  ac("252", "235"),
		Accent:     ac("27", "62"),
		AccentFg:   ac("255", "235"),
		Good:       ac("28", "78"),
		Warn:       ac("130", "214"),
		Bad:        ac("160", "203"),
	},
	"contrast": {
		Muted:      ac("236", "250"),
		SelectedBg: ac("232", "255"),
		SelectedFg: ac("255", "232"),
		SurfaceFg:  ac("232", "255"),
		ControlBg:  ac("250", "238"),
		Accent:     ac("19", "51"),
		AccentFg:   ac("255", "232"),
		Good:       ac("22", "46"),
		Warn:       ac("94", "226"),
		Bad:        ac("124", "196"),
	},
	"mono": {
		Muted:      ac("244", "244"),
		SelectedBg: ac("250", "238"),
		SelectedFg: ac("232", "255"),
		SurfaceFg:  ac("235", "252"),
		ControlBg:  ac("253", "236"),
		Accent:     ac("235", "252"),
		AccentFg:   ac("255", "235"),
		Good:       ac("235", "252"),
		Warn:       ac("235", "252"),
		Bad:        ac("235", "252"),
	},
}

// colors is the active palette. It is only written before the program starts.
var colors = profiles["default"]

// ProfileNames lists the appearance profiles accepted by applyProfile.
func ProfileNames() []string { return []string{"default", "contrast", "mono"} }

func applyProfile(name string) {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]; ok {
		colors = p
		return
	}
	colors = profiles["default"]
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colors.Muted))
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colors.SelectedFg).Background(colors.SelectedBg).Bold(true)
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colors.SurfaceFg).Background(colors.ControlBg)
}

func styleAccent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colors.Accent).Bold(true)
}

func healthStyle(h model.Health) lipgloss.Style {
	switch h {
	case model.HealthOnTrack:
		return lipgloss.NewStyle().Foreground(colors.Good)
	case model.HealthAtRisk:
		return lipgloss.NewStyle().Foreground(colors.Warn)
	case model.HealthOffTrack:
		return lipgloss.NewStyle().Foreground(colors.Bad)
	default:
		return styleMuted()
	}
}

func priorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityUrgent:
		return lipgloss.NewStyle().Foreground(colors.Bad).Bold(true)
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(colors.Warn)
	case model.PriorityNone:
		return styleMuted()
	default:
		return lipgloss.NewStyle().Foreground(colors.SurfaceFg)
	}
}

func notificationStyle(l notify.Level) lipgloss.Style {
	switch l {
	case notify.Success:
		return lipgloss.NewStyle().Foreground(colors.Good)
	case notify.Warning:
		return lipgloss.NewStyle().Foreground(colors.Warn)
	case notify.Error:
		return lipgloss.NewStyle().Foreground(colors.AccentFg).Background(colors.Bad).Bold(true)
	default:
		return styleMuted()
	}
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable
// colors in a TUI by accident. Only NO_COLOR is honored here; otherwise the
// terminal's capabilities decide.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Some terminals under-report; trust TERM/COLORTERM when they claim more.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection.
//
// Priority:
// 1) MOPS_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MOPS_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
