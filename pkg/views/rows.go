package views

import (
	"time"

	"github.com/google/uuid"
)

// ViewKind names one materialized view of an entity. The set of views per
// entity type is fixed at design time.
type ViewKind string

const (
	ByID      ViewKind = "by_id"
	ByTime    ViewKind = "by_time"
	ByOwner   ViewKind = "by_owner"
	ByContent ViewKind = "by_content"
	ByEmail   ViewKind = "by_email"
	Comments  ViewKind = "comments"
)

// PostViews is the full view set for a post.
var PostViews = []ViewKind{ByID, ByTime, ByOwner, ByContent}

// UserViews is the full view set for a user.
var UserViews = []ViewKind{ByID, ByEmail}

// UserRow is the denormalized user record stored in the user views.
type UserRow struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// PostRow is the denormalized post record. The same record is stored under
// every post view; only the key differs. Every field that participates in a
// view key must be present to address the row again.
type PostRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentRow is one comment in a post's comment partition.
type CommentRow struct {
	PostID    uuid.UUID `json:"post_id"`
	ID        uuid.UUID `json:"comment_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
