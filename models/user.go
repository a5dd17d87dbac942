package models

import "gorm.io/gorm"

// User represents an account that can publish recipes and follow other authors.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Username     string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	FirstName    string `gorm:"size:150" json:"first_name"`
	LastName     string `gorm:"size:150" json:"last_name"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsStaff      bool   `gorm:"not null;default:false" json:"-"`
}
