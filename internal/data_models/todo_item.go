package dto

import (
	"time"

	"todo-items.com/todo-items/internal/constants"
	model "todo-items.com/todo-items/internal/models"
)

type TodoItemCreateRequest struct {
	Subject  string     `json:"subject"`
	Deadline *time.Time `json:"deadline"`
}

type TodoItemUpdateRequest struct {
	Subject    string                       `json:"subject"`
	Deadline   *time.Time                   `json:"deadline"`
	Visibility constants.TodoItemVisibility `json:"visibility"`
}

type TodoItemListQuery struct {
	Visibility *constants.TodoItemVisibility
	Offset     int
	Limit      int
}

type TodoItemResponse struct {
	ID          uint                         `json:"id"`
	Subject     string                       `json:"subject"`
	Deadline    *time.Time                   `json:"deadline"`
	Status      constants.TodoItemStatus     `json:"status"`
	Visibility  constants.TodoItemVisibility `json:"visibility"`
	ResolveTime *time.Time                   `json:"resolve_time"`
}

func NewTodoItemResponse(item *model.TodoItem) TodoItemResponse {
	return TodoItemResponse{
		ID:          item.ID,
		Subject:     item.Subject,
		Deadline:    item.Deadline,
		Status:      item.Status,
		Visibility:  item.Visibility,
		ResolveTime: item.ResolveTime,
	}
}

func NewTodoItemResponses(items []model.TodoItem) []TodoItemResponse {
	out := make([]TodoItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewTodoItemResponse(&items[i]))
	}
	return out
}
