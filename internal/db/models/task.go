package models

// Task is a row of the tasks table.
type Task struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	Completed   bool    `db:"completed" json:"completed"`
}

// TaskCreate holds the fields accepted when a task is created.
type TaskCreate struct {
	Title       string
	Description *string
	Completed   bool
}

// TaskUpdate holds the fields written by an update. All of them are
// overwritten, so callers must send the complete task.
type TaskUpdate struct {
	Title       string
	Description *string
	Completed   bool
}
