package model

import "time"

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"uniqueIndex;not null" json:"username"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName       *string    `json:"full_name"`
	HashedPassword string     `gorm:"not null" json:"-"`
	Version        uint       `gorm:"not null;default:1" json:"-"`
	CreateTime     time.Time  `gorm:"not null" json:"create_time"`
	UpdateTime     *time.Time `json:"update_time"`
}

func (User) TableName() string {
	return "users"
}
