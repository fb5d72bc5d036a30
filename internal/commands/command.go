package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/taskflow/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeStart  Type = "start"
	TypePause  Type = "pause"
	TypeFinish Type = "finish"
	TypeGoto   Type = "goto"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs is a quick-add draft. Empty fields fall back to the task defaults
// and Date falls back to the focused day.
type AddArgs struct {
	Title     string
	Date      string
	StartTime string
	EndTime   string
	Category  model.Category
}

// StatusArgs names a task by list position (1-based) or by a title prefix.
type StatusArgs struct {
	Target string
	Status model.Status
}

type GotoArgs struct {
	Date  string
	Today bool
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Status *StatusArgs
	Goto   *GotoArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimLeft(raw, ":/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeStart, TypePause, TypeFinish:
		return parseStatus(input, Type(head), args)
	case TypeGoto:
		return parseGoto(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	add := AddArgs{}
	title := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case add.Date == "" && model.ValidDay(arg):
			add.Date = arg
		case add.StartTime == "" && isClockRange(arg):
			add.StartTime, add.EndTime, _ = strings.Cut(arg, "-")
		case add.StartTime == "" && model.ValidClock(arg):
			add.StartTime = arg
		case add.Category == "" && len(arg) > 1 && strings.HasPrefix(arg, "#"):
			cat := model.Category(strings.ToLower(arg[1:]))
			if !cat.IsValid() {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown category: %s", arg[1:])}
			}
			add.Category = cat
		default:
			title = append(title, arg)
		}
	}
	add.Title = strings.TrimSpace(strings.Join(title, " "))
	if add.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &add}, nil
}

func isClockRange(s string) bool {
	start, end, ok := strings.Cut(s, "-")
	return ok && model.ValidClock(start) && model.ValidClock(end)
}

func parseStatus(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task", typ)}
	}
	status, err := model.ParseStatus(string(typ))
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: typ, Raw: raw, Status: &StatusArgs{Target: strings.Join(args, " "), Status: status}}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goto requires a date or today"}
	}
	arg := strings.ToLower(args[0])
	if arg == "today" {
		return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Today: true}}, nil
	}
	if !model.ValidDay(arg) {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", args[0])}
	}
	return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Date: arg}}, nil
}
