package models

import "time"

// ItemType distinguishes tasks from the containers that group them.
type ItemType string

const (
	ItemTypeTask    ItemType = "task"
	ItemTypeProject ItemType = "project"
	ItemTypeFolder  ItemType = "folder"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeTask, ItemTypeProject, ItemTypeFolder:
		return true
	}
	return false
}

// Item is a task, project or folder owned by one user.
// MainOrder is set iff the item is active (not completed).
type Item struct {
	ID                  string    `json:"id" db:"id"`
	UserID              string    `json:"userId" db:"user_id"`
	ParentID            *string   `json:"parentId,omitempty" db:"parent_id"`
	Text                string    `json:"text" db:"text"`
	Completed           bool      `json:"completed" db:"completed"`
	MainOrder           *int      `json:"mainOrder,omitempty" db:"main_order"`
	Type                ItemType  `json:"type" db:"type"`
	AssignedDate        *string   `json:"assignedDate,omitempty" db:"assigned_date"`
	DayOrder            *int      `json:"dayOrder,omitempty" db:"day_order"`
	Expanded            bool      `json:"expanded" db:"expanded"`
	Color               *string   `json:"color,omitempty" db:"color"`
	TimeEstimateHours   int       `json:"timeEstimateHours" db:"time_estimate_hours"`
	TimeEstimateMinutes int       `json:"timeEstimateMinutes" db:"time_estimate_minutes"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

// Active reports whether the item takes part in its sibling ordering.
func (i *Item) Active() bool {
	return !i.Completed
}

// Parent returns the parent id, or "" for top-level items.
func (i *Item) Parent() string {
	if i.ParentID == nil {
		return ""
	}
	return *i.ParentID
}

// Date returns the assigned date, or "" when unscheduled.
func (i *Item) Date() string {
	if i.AssignedDate == nil {
		return ""
	}
	return *i.AssignedDate
}

// DeleteResult is returned by both single-item and subtree deletes.
type DeleteResult struct {
	DeletedOrder *int `json:"deletedOrder"`
	UpdatedCount int  `json:"updatedCount"`
}

// MoveResult carries the clamped position an item landed on.
type MoveResult struct {
	NewOrder int `json:"newOrder"`
}

// Event actions published after a committed mutation.
const (
	ActionCreated     = "created"
	ActionMoved       = "moved"
	ActionCompleted   = "completed"
	ActionUncompleted = "uncompleted"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionAssigned    = "assigned"
	ActionUnassigned  = "unassigned"
)

// ItemEvent is the message payload for Kafka.
type ItemEvent struct {
	Action     string    `json:"action"`
	ItemID     string    `json:"item_id"`
	UserID     string    `json:"user_id"`
	ParentID   string    `json:"parent_id,omitempty"`
	Date       string    `json:"date,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
