package models

import "time"

// Post is the logical post entity. In the source store comments are embedded
// in the post document; in the target store they live in their own view.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Comments  []Comment `json:"comments"`

	// Derived at read time, never stored.
	CommentsCount   int   `json:"commentsCount"`
	AuthorPostCount int64 `json:"author_post_count,omitempty"`
}

// Comment carries a stable identifier assigned at creation; deletion is by
// id, not by array position.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
