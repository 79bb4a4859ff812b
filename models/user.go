package models

import "time"

// User represents a registered user. Tasks are owned by users.
// The password hash is never serialized.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	FullName     string    `json:"fullName" gorm:"size:50;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}
