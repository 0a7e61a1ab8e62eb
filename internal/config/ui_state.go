package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const uiStateFileName = "ui_state.json"

// UIState is the small bit of TUI state restored on relaunch. Loading is
// best effort: a missing or corrupt file yields the zero state.
type UIState struct {
	Version int `json:"version"`

	// Screen is one of: campaigns|campaign
	Screen     string `json:"screen,omitempty"`
	CampaignID string `json:"campaignId,omitempty"`

	// CalendarView is one of: day|week|month
	CalendarView string `json:"calendarView,omitempty"`

	// RecentCampaignIDs lists recently opened campaigns, newest first.
	RecentCampaignIDs []string `json:"recentCampaignIds,omitempty"`
}

const maxRecent = 10

// Touch records id as the most recently opened campaign.
func (s *UIState) Touch(id string) {
	if id == "" {
		return
	}
	out := []string{id}
	for _, v := range s.RecentCampaignIDs {
		if v != id && len(out) < maxRecent {
			out = append(out, v)
		}
	}
	s.RecentCampaignIDs = out
	s.CampaignID = id
}

func uiStatePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, uiStateFileName), nil
}

func LoadUIState() (*UIState, error) {
	path, err := uiStatePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &UIState{Version: 1}, nil
		}
		return nil, err
	}
	var st UIState
	if err := json.Unmarshal(b, &st); err != nil {
		return &UIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func SaveUIState(st *UIState) error {
	if st == nil {
		return nil
	}
	path, err := uiStatePath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, uiStateFileName+".*.tmp", path, b, 0o644)
}
