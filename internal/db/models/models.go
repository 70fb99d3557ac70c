package models

// TaskList wraps the result of a list query.
type TaskList struct {
	Tasks []*Task `json:"tasks"`
}

// NewTaskList never yields a null tasks array.
func NewTaskList(tasks []*Task) TaskList {
	if tasks == nil {
		tasks = []*Task{}
	}
	return TaskList{Tasks: tasks}
}
