package views

import (
	"fmt"
	"strings"
)

type TodayItemData struct {
	ID        string
	Title     string
	Status    string
	Window    string
	Elapsed   string
	Remaining string
	Urgency   string
}

type TodayPanelData struct {
	Date       string
	IsToday    bool
	Items      []TodayItemData
	SelectedID string
}

type TaskDetailData struct {
	Title           string
	Status          string
	Date            string
	Window          string
	Planned         string
	Category        string
	Priority        string
	URL             string
	DescriptionView string
}

type DayCellData struct {
	Day     int
	InMonth bool
	Count   int
	Focused bool
	IsToday bool
}

type MonthGridData struct {
	Label    string
	Weekdays []string
	Weeks    [][]DayCellData
	Skipped  int
}

type UpcomingItemData struct {
	Date  string
	Time  string
	Title string
}

type OverviewData struct {
	Date        string
	Total       int
	Today       int
	Upcoming    int
	NextTitle   string
	NextWindow  string
	NextUrgency string
	Loaded      bool
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	title := data.Date
	if data.IsToday {
		title += " (today)"
	}
	b.WriteString(fmt.Sprintf("tasks for %s:\n", title))
	b.WriteString("actions: [j/k]move [h/l]day [s]start [p]pause [f]finish\n")
	if len(data.Items) == 0 {
		b.WriteString(mutedStyle.Render("  (no tasks)"))
		return b.String()
	}
	for _, item := range data.Items {
		cursor := " "
		if item.ID == data.SelectedID {
			cursor = ">"
		}
		line := fmt.Sprintf("%s [%s] %s", cursor, item.Status, item.Title)
		if item.Window != "" {
			line += " " + mutedStyle.Render(item.Window)
		}
		b.WriteString(line + "\n")

		meta := "    elapsed " + item.Elapsed
		if item.Remaining != "" {
			meta += " | left " + item.Remaining
		}
		if item.Urgency != "" {
			meta += " | " + item.Urgency
		}
		b.WriteString(meta + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("details:\n%s\n", headerStyle.Render(data.Title)))
	b.WriteString(fmt.Sprintf("status: %s\n", data.Status))
	when := data.Date
	if data.Window != "" {
		when += " " + data.Window
	}
	b.WriteString(fmt.Sprintf("when: %s\n", when))
	if data.Planned != "" {
		b.WriteString(fmt.Sprintf("planned: %s\n", data.Planned))
	}
	b.WriteString(fmt.Sprintf("category: %s | priority: %s\n", data.Category, data.Priority))
	if data.URL != "" {
		b.WriteString(fmt.Sprintf("url: %s\n", data.URL))
	}
	if data.DescriptionView != "" {
		b.WriteString("\n" + data.DescriptionView)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderMonthGrid draws one row per week. Days outside the month are
// muted; days with tasks carry their count.
func RenderMonthGrid(data MonthGridData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n", headerStyle.Render(data.Label)))
	b.WriteString("actions: [h/l]day [j/k]week [</>]month [enter]open day\n")
	for _, wd := range data.Weekdays {
		b.WriteString(fmt.Sprintf(" %-6s", wd))
	}
	b.WriteString("\n")
	for _, week := range data.Weeks {
		for _, cell := range week {
			b.WriteString(" " + renderDayCell(cell))
		}
		b.WriteString("\n")
	}
	if data.Skipped > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d task(s) with unreadable dates hidden", data.Skipped)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDayCell(cell DayCellData) string {
	text := fmt.Sprintf("%2d", cell.Day)
	if cell.Count > 0 {
		text += fmt.Sprintf("(%d)", cell.Count)
	}
	text = fmt.Sprintf("%-6s", text)
	switch {
	case cell.Focused:
		return cursorStyle.Render(text)
	case cell.IsToday:
		return todayStyle.Render(text)
	case !cell.InMonth:
		return mutedStyle.Render(text)
	default:
		return text
	}
}

func RenderUpcoming(items []UpcomingItemData) string {
	var b strings.Builder
	b.WriteString("upcoming:\n")
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("(nothing scheduled)"))
		return b.String()
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("- %s %s %s\n", item.Date, item.Time, item.Title))
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderOverview(data OverviewData) string {
	if !data.Loaded {
		return "overview:\nloading..."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("overview (%s):\n", data.Date))
	b.WriteString(fmt.Sprintf("  total     %d\n", data.Total))
	b.WriteString(fmt.Sprintf("  today     %d\n", data.Today))
	b.WriteString(fmt.Sprintf("  upcoming  %d\n", data.Upcoming))
	b.WriteString("\nnext task:\n")
	if data.NextTitle == "" {
		b.WriteString(mutedStyle.Render("(nothing else today)"))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  %s %s", data.NextTitle, data.NextWindow))
	if data.NextUrgency != "" {
		b.WriteString("\n  " + data.NextUrgency)
	}
	return b.String()
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return inputView
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\n\nhelp (%s):\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
