package model

import "time"

// Task represents a single to-do item owned by exactly one account.
//
// AccountID is set at creation and immutable afterwards — updates may change
// Description and Completed only. The service layer enforces that; the
// database backs it up with a NOT NULL foreign key that cascade-deletes
// tasks when their owning account is removed.
//
// The `json:"userId"` tag keeps the wire name the web client already uses.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	AccountID   string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
