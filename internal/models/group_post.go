package models

import (
	"time"

	"github.com/google/uuid"
)

type GroupPost struct {
	ID             uuid.UUID  `json:"id"`
	GroupID        uuid.UUID  `json:"group_id"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Author         string     `json:"author"`
	AuthorKey      string     `json:"-"`
	OriginalPostID *uuid.UUID `json:"original_post_id,omitempty"`
	Likes          []string   `json:"likes"`
	CreatedAt      time.Time  `json:"created_at"`
}
