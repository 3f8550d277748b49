package constants

type TodoItemStatus string

const (
	StatusOpen     TodoItemStatus = "open"
	StatusResolved TodoItemStatus = "resolved"
	StatusOverdue  TodoItemStatus = "overdue"
)

func (s TodoItemStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusResolved, StatusOverdue:
		return true
	}
	return false
}

type TodoItemVisibility string

const (
	VisibilityVisible  TodoItemVisibility = "visible"
	VisibilityArchived TodoItemVisibility = "archived"
)

func (v TodoItemVisibility) Valid() bool {
	switch v {
	case VisibilityVisible, VisibilityArchived:
		return true
	}
	return false
}
