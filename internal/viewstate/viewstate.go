// Package viewstate holds the per-screen UI state: view mode, pagination,
// panel visibility and selection. All transitions are pure; they return a new
// State and never touch the receiver.
package viewstate

import (
	"fmt"
	"strings"

	"mops-cli/internal/model"
)

type Mode string

const (
	// Campaign list screen.
	ModeTable   Mode = "table"
	ModeGrid    Mode = "grid"
	ModeCompact Mode = "compact"

	// Single campaign screen.
	ModeBoard     Mode = "board"
	ModeList      Mode = "list"
	ModeAnalytics Mode = "analytics"
	ModeCalendar  Mode = "calendar"
)

type Screen string

const (
	ScreenCampaigns Screen = "campaigns"
	ScreenCampaign  Screen = "campaign"
)

// Modes returns the modes available on a screen, default first.
func Modes(screen Screen) []Mode {
	switch screen {
	case ScreenCampaigns:
		return []Mode{ModeTable, ModeGrid, ModeCompact}
	case ScreenCampaign:
		return []Mode{ModeBoard, ModeList, ModeCalendar, ModeAnalytics}
	default:
		return nil
	}
}

func ParseMode(screen Screen, s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes(screen) {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid view mode %q for %s screen", s, screen)
}

const DefaultPageSize = 20

type State struct {
	Screen          Screen           `json:"screen"`
	Mode            Mode             `json:"viewMode"`
	Page            model.Pagination `json:"pagination"`
	SidebarOpen     bool             `json:"sidebarOpen"`
	DetailPanelOpen bool             `json:"detailPanelOpen"`
	SelectedID      string           `json:"selectedId,omitempty"`
}

func New(screen Screen) State {
	mode := Mode("")
	if ms := Modes(screen); len(ms) > 0 {
		mode = ms[0]
	}
	return State{
		Screen:      screen,
		Mode:        mode,
		Page:        model.NewPagination(1, DefaultPageSize, 0),
		SidebarOpen: true,
	}
}

// SetMode switches the view mode. Modes that do not belong to the screen are ignored.
func (s State) SetMode(m Mode) State {
	for _, valid := range Modes(s.Screen) {
		if valid == m {
			s.Mode = m
			return s
		}
	}
	return s
}

// CycleMode advances to the next mode of the screen.
func (s State) CycleMode() State {
	ms := Modes(s.Screen)
	if len(ms) == 0 {
		return s
	}
	for i, m := range ms {
		if m == s.Mode {
			s.Mode = ms[(i+1)%len(ms)]
			return s
		}
	}
	s.Mode = ms[0]
	return s
}

// SetPage replaces the current page. Total and TotalPages are left untouched;
// they only change when fresh metadata arrives via ApplyMeta.
func (s State) SetPage(n int) State {
	if n < 1 {
		n = 1
	}
	s.Page.Page = n
	return s
}

func (s State) NextPage() State {
	if !s.Page.HasNextPage() {
		return s
	}
	return s.SetPage(s.Page.Page + 1)
}

func (s State) PrevPage() State {
	if !s.Page.HasPrevPage() {
		return s
	}
	return s.SetPage(s.Page.Page - 1)
}

func (s State) SetLimit(limit int) State {
	if limit < 1 {
		limit = DefaultPageSize
	}
	s.Page.Limit = limit
	s.Page.Page = 1
	return s
}

// ApplyMeta takes total/totalPages (and the page the server actually served)
// from a fetch result.
func (s State) ApplyMeta(meta model.Pagination) State {
	if meta.Limit > 0 {
		s.Page.Limit = meta.Limit
	}
	s.Page.Total = meta.Total
	s.Page.TotalPages = meta.TotalPages
	if meta.Page > 0 {
		s.Page.Page = meta.Page
	}
	return s
}

func (s State) ToggleSidebar() State {
	s.SidebarOpen = !s.SidebarOpen
	return s
}

func (s State) Select(id string) State {
	s.SelectedID = strings.TrimSpace(id)
	return s
}

// OpenDetail selects id and opens the detail panel for it.
func (s State) OpenDetail(id string) State {
	id = strings.TrimSpace(id)
	if id == "" {
		return s
	}
	s.SelectedID = id
	s.DetailPanelOpen = true
	return s
}

func (s State) CloseDetail() State {
	s.DetailPanelOpen = false
	return s
}

// Forget drops every reference to id: the selection is cleared and a detail
// panel showing it is closed.
func (s State) Forget(id string) State {
	if id == "" || s.SelectedID != id {
		return s
	}
	s.SelectedID = ""
	s.DetailPanelOpen = false
	return s
}
