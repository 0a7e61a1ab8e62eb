package format

import (
	"bytes"
	"strings"
	"testing"

	"mops-cli/internal/model"
)

type row struct {
	ID     string            `json:"id"`
	Status string            `json:"status"`
	Code   string            `json:"code"`
	Meta   *model.Pagination `json:"meta,omitempty"`
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, row{ID: "c1", Status: "DRAFT"}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{"id":"c1","status":"DRAFT","code":""}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWrite_YAMLKeepsOrderAndQuotesAmbiguousStrings(t *testing.T) {
	meta := model.NewPagination(1, 20, 45)
	var buf bytes.Buffer
	if err := Write(&buf, row{ID: "c1", Status: "DRAFT", Code: "true", Meta: &meta}, "yaml", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := strings.Join([]string{
		"id: c1",
		"status: DRAFT",
		`code: "true"`,
		"meta:",
		"  page: 1",
		"  limit: 20",
		"  total: 45",
		"  totalPages: 3",
		"  hasNextPage: true",
		"  hasPrevPage: false",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}
