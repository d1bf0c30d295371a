package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
)

// RelationshipStatus is the viewer-relative projection of a friendship edge.
type RelationshipStatus string

const (
	RelationshipNone            RelationshipStatus = "none"
	RelationshipFriends         RelationshipStatus = "friends"
	RelationshipPendingOutgoing RelationshipStatus = "pending-outgoing"
	RelationshipPendingIncoming RelationshipStatus = "pending-incoming"
)

// Friendship is the single undirected edge between two usernames. The
// requester field records which side initiated the pending request; once
// accepted the edge is direction-agnostic.
type Friendship struct {
	ID           uuid.UUID        `json:"id"`
	Requester    string           `json:"requester"`
	RequesterKey string           `json:"-"`
	Recipient    string           `json:"recipient"`
	RecipientKey string           `json:"-"`
	Status       FriendshipStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// FriendRequestResult reports what a Request call did. Both fields false
// means the call was a no-op (self-request, or an edge already existed).
type FriendRequestResult struct {
	Created  bool `json:"created"`
	Accepted bool `json:"accepted"`
}
