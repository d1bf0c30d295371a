package models

import (
	"time"

	"github.com/google/uuid"
)

// Group metadata. The member, admin and join-request sets live in their own
// tables and are loaded separately; admins and members are independent sets
// (an admin removed from members is not re-checked for consistency).
type Group struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedBy    string    `json:"created_by"`
	CreatedByKey string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type GroupDetail struct {
	Group
	Members      []string `json:"members"`
	Admins       []string `json:"admins"`
	JoinRequests []string `json:"join_requests"`
}

type GroupSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// JoinResult reports the outcome of a join call: Pending means a join
// request was recorded (or already existed), otherwise the caller was
// already a member.
type JoinResult struct {
	Pending bool `json:"pending"`
}
