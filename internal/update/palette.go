package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskflow/internal/calendar"
	"github.com/sandeepkv93/taskflow/internal/commands"
	"github.com/sandeepkv93/taskflow/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		return m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.commandInput.Value())
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.setError(err)
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			date := a.Date
			if date == "" {
				date = m.focusedKey()
			}
			follow = m.createTaskCmd(model.Task{
				Title:     a.Title,
				Date:      date,
				StartTime: a.StartTime,
				EndTime:   a.EndTime,
				Category:  a.Category,
			})
			return commands.Result{Message: fmt.Sprintf("adding %q", a.Title)}, nil
		},
		Status: func(s commands.StatusArgs) (commands.Result, error) {
			task, ok := m.findTask(s.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", s.Target)}
			}
			c, text, err := m.requestStatus(task, s.Status)
			if err != nil {
				return commands.Result{}, err
			}
			follow = c
			return commands.Result{Message: text}, nil
		},
		Goto: func(g commands.GotoArgs) (commands.Result, error) {
			day := startOfDay(m.clock())
			if !g.Today {
				d, err := time.ParseInLocation(model.DayLayout, g.Date, m.now.Location())
				if err != nil {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
				}
				day = d
			}
			m.focusDay(day)
			follow = m.reloadCmd()
			return commands.Result{Message: "showing " + calendar.DayKey(day)}, nil
		},
	})
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, follow
}
