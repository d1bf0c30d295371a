package models

import (
	"time"

	"github.com/google/uuid"
)

// SharedInfo marks a post as a repost of an original. Title and body are
// snapshot at share time; later edits to the original do not propagate.
type SharedInfo struct {
	OriginalID        uuid.UUID `json:"original_id"`
	OriginalAuthor    string    `json:"original_author"`
	OriginalCreatedAt time.Time `json:"original_created_at"`
	SharedAt          time.Time `json:"shared_at"`
	To                string    `json:"to,omitempty"`
}

type Post struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	Author    string      `json:"author"`
	AuthorKey string      `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	Shared    *SharedInfo `json:"shared,omitempty"`
}

type CreatePostParams struct {
	Title  string
	Body   string
	Author string
}

type UpdatePostParams struct {
	Title string
	Body  string
}

// ShareResult reports a share outcome. Already means an identical share by
// the same user existed and the call was an idempotent success.
type ShareResult struct {
	ID      uuid.UUID `json:"id,omitempty"`
	Already bool      `json:"already"`
}
