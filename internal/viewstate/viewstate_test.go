package viewstate

import (
	"encoding/json"
	"math/rand"
	"testing"

	"mops-cli/internal/model"
)

func TestSetPage_DoesNotTouchTotals(t *testing.T) {
	s := New(ScreenCampaigns).ApplyMeta(model.Pagination{Page: 1, Limit: 10, Total: 45, TotalPages: 5})
	s = s.SetPage(3)
	if s.Page.Page != 3 || s.Page.Total != 45 || s.Page.TotalPages != 5 {
		t.Fatalf("unexpected pagination after SetPage: %+v", s.Page)
	}
	if s.SetPage(0).Page.Page != 1 {
		t.Fatalf("expected page clamp to 1")
	}
}

func TestNextPrevPage_StopAtBounds(t *testing.T) {
	s := New(ScreenCampaigns).ApplyMeta(model.Pagination{Page: 1, Limit: 10, Total: 20, TotalPages: 2})
	if s.PrevPage().Page.Page != 1 {
		t.Fatalf("PrevPage on first page should stay")
	}
	s = s.NextPage()
	if s.Page.Page != 2 {
		t.Fatalf("expected page 2, got %d", s.Page.Page)
	}
	if s.NextPage().Page.Page != 2 {
		t.Fatalf("NextPage on last page should stay")
	}
}

func TestPagination_DerivedFlagsAlwaysConsistent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	s := New(ScreenCampaigns)
	check := func(step int) {
		t.Helper()
		p := s.Page
		if p.HasNextPage() != (p.Page < p.TotalPages) {
			t.Fatalf("step %d: hasNextPage inconsistent for %+v", step, p)
		}
		if p.HasPrevPage() != (p.Page > 1) {
			t.Fatalf("step %d: hasPrevPage inconsistent for %+v", step, p)
		}
		b, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var wire struct {
			HasNextPage bool `json:"hasNextPage"`
			HasPrevPage bool `json:"hasPrevPage"`
		}
		if err := json.Unmarshal(b, &wire); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if wire.HasNextPage != p.HasNextPage() || wire.HasPrevPage != p.HasPrevPage() {
			t.Fatalf("step %d: encoded flags disagree: %s", step, b)
		}
	}
	for step := 0; step < 500; step++ {
		switch r.Intn(5) {
		case 0:
			s = s.SetPage(r.Intn(12) - 1)
		case 1:
			s = s.NextPage()
		case 2:
			s = s.PrevPage()
		case 3:
			total := r.Intn(200)
			s = s.ApplyMeta(model.NewPagination(1+r.Intn(5), 20, total))
		case 4:
			s = s.SetLimit(r.Intn(50))
		}
		check(step)
	}
}

func TestPagination_IgnoresIncomingFlags(t *testing.T) {
	var p model.Pagination
	if err := json.Unmarshal([]byte(`{"page":3,"limit":10,"total":30,"totalPages":3,"hasNextPage":true,"hasPrevPage":false}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.HasNextPage() {
		t.Fatalf("page 3 of 3 must not have a next page")
	}
	if !p.HasPrevPage() {
		t.Fatalf("page 3 must have a previous page")
	}
}

func TestForget_ClosesPanelOnlyForSelectedID(t *testing.T) {
	s := New(ScreenCampaigns).OpenDetail("c1")
	if got := s.Forget("c2"); !got.DetailPanelOpen || got.SelectedID != "c1" {
		t.Fatalf("forgetting another id must not close the panel: %+v", got)
	}
	got := s.Forget("c1")
	if got.DetailPanelOpen || got.SelectedID != "" {
		t.Fatalf("expected cleared selection and closed panel: %+v", got)
	}
}

func TestModes(t *testing.T) {
	s := New(ScreenCampaign)
	if s.Mode != ModeBoard {
		t.Fatalf("expected board default, got %q", s.Mode)
	}
	if s.SetMode(ModeGrid).Mode != ModeBoard {
		t.Fatalf("grid is not a campaign-screen mode")
	}
	if s.CycleMode().Mode != ModeList {
		t.Fatalf("expected list after board")
	}
	if _, err := ParseMode(ScreenCampaigns, "GRID"); err != nil {
		t.Fatalf("ParseMode: %v", err)
	}
}
