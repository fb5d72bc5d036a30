package storage

import "github.com/sandeepkv93/taskflow/internal/model"

// TaskListFilter narrows ListTasks. Date matches one day; From and To bound
// an inclusive day-key range and are ignored when Date is set.
type TaskListFilter struct {
	UserID string
	Date   string
	From   string
	To     string
	Status model.Status
	Limit  int
	Offset int
}

type ProjectListFilter struct {
	UserID string
	Limit  int
	Offset int
}
