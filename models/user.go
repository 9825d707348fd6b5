package models

import "time"

// User is a local reference row for an identity owned by the external
// auth service. Rows are provisioned on first authenticated request.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	Favorites []Article `gorm:"many2many:article_saves" json:"favorites,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
