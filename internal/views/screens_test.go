package views

import (
	"strings"
	"testing"

	"github.com/sandeepkv93/taskflow/internal/urgency"
)

func TestRenderTodayPanel(t *testing.T) {
	out := RenderTodayPanel(TodayPanelData{
		Date:    "2024-03-10",
		IsToday: true,
		Items: []TodayItemData{
			{ID: "a", Title: "Standup", Status: "Running", Window: "09:00-09:15", Elapsed: "05:00", Remaining: "00:10:00", Urgency: "In Progress"},
			{ID: "b", Title: "Lunch", Status: "Paused", Elapsed: "0s"},
		},
		SelectedID: "b",
	})
	for _, want := range []string{"2024-03-10 (today)", "[Running] Standup", "left 00:10:00", "> [Paused] Lunch"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "left 00:00:00") {
		t.Fatalf("untimed task must not show a countdown: %q", out)
	}
}

func TestRenderTodayPanelEmpty(t *testing.T) {
	out := RenderTodayPanel(TodayPanelData{Date: "2024-03-11"})
	if !strings.Contains(out, "(no tasks)") || strings.Contains(out, "(today)") {
		t.Fatalf("unexpected empty panel: %q", out)
	}
}

func TestRenderMonthGrid(t *testing.T) {
	weeks := [][]DayCellData{{
		{Day: 26}, {Day: 27}, {Day: 28}, {Day: 29},
		{Day: 1, InMonth: true}, {Day: 2, InMonth: true, Count: 3}, {Day: 3, InMonth: true, Focused: true},
	}}
	out := RenderMonthGrid(MonthGridData{
		Label:    "March 2024",
		Weekdays: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		Weeks:    weeks,
		Skipped:  1,
	})
	for _, want := range []string{"March 2024", "Mon", "Sun", " 2(3)", "26", "1 task(s) with unreadable dates hidden"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestRenderUrgencyKeepsText(t *testing.T) {
	cases := []urgency.Urgency{
		{State: urgency.StateUpcoming, Text: "5m remaining", Tier: urgency.TierImminent},
		{State: urgency.StateInProgress, Text: "In Progress", Tier: urgency.TierNear},
		{State: urgency.StateCompleted, Text: "Completed", Tier: urgency.TierPast},
	}
	for _, u := range cases {
		if out := RenderUrgency(u); !strings.Contains(out, u.Text) {
			t.Fatalf("RenderUrgency(%+v) = %q", u, out)
		}
	}
}

func TestRenderTaskDetail(t *testing.T) {
	if out := RenderTaskDetail(TaskDetailData{}); !strings.Contains(out, "(no selection)") {
		t.Fatalf("unexpected empty detail: %q", out)
	}
	out := RenderTaskDetail(TaskDetailData{
		Title:    "Standup",
		Status:   "Paused",
		Date:     "2024-03-10",
		Window:   "09:00-09:15",
		Planned:  "15m",
		Category: "work",
		Priority: "high",
	})
	for _, want := range []string{"status: Paused", "when: 2024-03-10 09:00-09:15", "planned: 15m", "category: work | priority: high"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	if RenderMarkdown("  ") != "" {
		t.Fatal("blank markdown should render empty")
	}
	if out := RenderMarkdown("**agenda** for the week"); !strings.Contains(out, "agenda") {
		t.Fatalf("expected rendered text, got %q", out)
	}
}

func TestRenderOverview(t *testing.T) {
	out := RenderOverview(OverviewData{Date: "2024-03-10", Total: 5, Today: 2, Upcoming: 1, Loaded: true})
	if !strings.Contains(out, "total     5") || !strings.Contains(out, "(nothing else today)") {
		t.Fatalf("unexpected overview: %q", out)
	}
	out = RenderOverview(OverviewData{Loaded: true, NextTitle: "Review", NextWindow: "10:00-10:30", NextUrgency: "30m remaining"})
	if !strings.Contains(out, "Review 10:00-10:30") || !strings.Contains(out, "30m remaining") {
		t.Fatalf("next task missing: %q", out)
	}
}
