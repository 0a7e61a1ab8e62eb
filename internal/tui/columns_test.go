package tui

import (
	"strings"
	"testing"

	"mops-cli/internal/model"
)

func strPtr(s string) *string { return &s }

func TestRenderTaskBoard_OnlyTopLevelTasks(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Title: "Top", Status: model.TaskTodo},
		{ID: "b", Title: "Child", Status: model.TaskTodo, ParentTaskID: strPtr("a")},
	}

	board := buildTaskBoard(tasks)
	out := renderTaskBoard(board, boardSelection{}, boardDrag{}, 120, 10)
	if strings.Contains(out, "Child") {
		t.Fatalf("expected subtask to be excluded from the board, got=%q", out)
	}
	if !strings.Contains(out, "Top") {
		t.Fatalf("expected top-level title on the board, got=%q", out)
	}
	if !strings.Contains(out, "Todo (1)") {
		t.Fatalf("expected header count to be 1, got=%q", out)
	}
}

func TestTaskBoard_SelectionFollowsTaskID(t *testing.T) {
	board := buildTaskBoard([]model.Task{
		{ID: "a", Title: "A", Status: model.TaskTodo},
		{ID: "b", Title: "B", Status: model.TaskDone},
	})
	sel := board.clamp(boardSelection{TaskID: "b"})
	if sel.Col != 3 || sel.Item != 0 {
		t.Fatalf("expected b in the Done column, got %+v", sel)
	}

	// Stepping into an empty column keeps the column but selects nothing.
	sel = board.moveSelection(boardSelection{TaskID: "a"}, 1, 0)
	if sel.Col != 1 || sel.Item != -1 || sel.TaskID != "" {
		t.Fatalf("expected empty In progress column, got %+v", sel)
	}
	if _, ok := board.selected(sel); ok {
		t.Fatalf("expected no selected task in an empty column")
	}

	sel = board.moveSelection(sel, -5, 0)
	if sel.Col != 0 || sel.TaskID != "a" {
		t.Fatalf("expected clamp to the first column, got %+v", sel)
	}
}

func TestRenderTaskBoard_DragMarksCard(t *testing.T) {
	applyGlyphs(t, glyphSetASCII)
	board := buildTaskBoard([]model.Task{{ID: "a", Title: "Draft brief", Status: model.TaskTodo}})
	out := renderTaskBoard(board, boardSelection{}, boardDrag{active: true, taskID: "a", targetCol: 2}, 120, 10)
	if !strings.Contains(out, "# Draft brief") {
		t.Fatalf("expected drag marker on the dragged card, got=%q", out)
	}
}

func TestNestedOrder_ChildrenFollowParent(t *testing.T) {
	in := []model.Task{
		{ID: "sub-b", ParentTaskID: strPtr("b")},
		{ID: "a"},
		{ID: "orphan", ParentTaskID: strPtr("gone")},
		{ID: "b"},
		{ID: "sub-a", ParentTaskID: strPtr("a")},
	}
	var got []string
	for _, t := range nestedOrder(in) {
		got = append(got, t.ID)
	}
	if strings.Join(got, ",") != "a,sub-a,b,sub-b,orphan" {
		t.Fatalf("order = %v", got)
	}
}

func TestRenderAnalytics_CountsByStatus(t *testing.T) {
	out := renderAnalytics([]model.Task{
		{ID: "a", Status: model.TaskDone},
		{ID: "b", Status: model.TaskDone},
		{ID: "c", Status: model.TaskTodo},
	}, 60, 10)
	if !strings.Contains(out, "3 tasks") {
		t.Fatalf("expected total, got=%q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Done") && !strings.Contains(line, "   2 ") {
			t.Fatalf("expected Done count 2, got line %q", line)
		}
	}
}
