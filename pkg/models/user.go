package models

// User is the logical user entity. ID is always the external 24-hex form,
// regardless of which store currently holds the row.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// PostsCount is derived at read time (source: collection count,
	// target: aggregate counter). It is never stored.
	PostsCount int64 `json:"postsCount"`
}
