package models

import (
	"time"
)

type Startup struct {
	ID          int       `json:"id" db:"id"`
	OwnerUserID int       `json:"owner_user_id" db:"owner_user_id"`
	Idea        string    `json:"idea" db:"idea"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
