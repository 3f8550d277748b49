package model

import (
	"time"

	"todo-items.com/todo-items/internal/constants"
)

type TodoItem struct {
	ID          uint                         `gorm:"primaryKey" json:"id"`
	UserID      uint                         `gorm:"not null;index" json:"user_id"`
	User        *User                        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Subject     string                       `gorm:"not null" json:"subject"`
	Deadline    *time.Time                   `gorm:"index" json:"deadline"`
	Status      constants.TodoItemStatus     `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	Visibility  constants.TodoItemVisibility `gorm:"type:varchar(20);not null;default:visible;index" json:"visibility"`
	ResolveTime *time.Time                   `json:"resolve_time"`
	Version     uint                         `gorm:"not null;default:1" json:"-"`
	CreateTime  time.Time                    `gorm:"not null" json:"create_time"`
	UpdateTime  *time.Time                   `json:"update_time"`
}

func (TodoItem) TableName() string {
	return "todo_items"
}
