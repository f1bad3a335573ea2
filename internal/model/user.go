package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Username     string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:254" json:"email"`
	FirstName    string     `gorm:"size:150" json:"firstName"`
	LastName     string     `gorm:"size:150" json:"lastName"`
	Password     string     `gorm:"size:100;not null" json:"-"`
	IsInstructor bool       `gorm:"not null" json:"isInstructor"`
	IsStudent    bool       `gorm:"not null" json:"isStudent"`
	IsStaff      bool       `gorm:"not null" json:"isStaff"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}
