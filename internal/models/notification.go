package models

import "database/sql"

type Notification struct {
	ID        int            `json:"id,omitempty" db:"id,omitempty"`
	UserID    int            `json:"user_id,omitempty" db:"user_id,omitempty"`
	Message   string         `json:"message,omitempty" db:"message,omitempty"`
	Link      string         `json:"link,omitempty" db:"link,omitempty"`
	IsRead    bool           `json:"is_read,omitempty" db:"is_read,omitempty"`
	CreatedAt sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
}
