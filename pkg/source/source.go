// Package source models the system of record being migrated away from: a
// document store holding user and post documents, comments embedded in
// their post. It speaks only the opaque store primitives.
package source

import (
	"encoding/json"
	"fmt"

	"shiftdb/pkg/models"
	"shiftdb/pkg/store"
)

const (
	userPrefix = "user:"
	postPrefix = "post:"
)

// DocStore wraps a physical store with the source document layout. Source
// ids carry a timestamp prefix, so a prefix scan returns documents in
// creation order.
type DocStore struct {
	s store.Store
}

func New(s store.Store) *DocStore {
	return &DocStore{s: s}
}

func userKey(id string) string { return userPrefix + id }
func postKey(id string) string { return postPrefix + id }

// --- users ---

func (d *DocStore) InsertUser(u models.User) error {
	u.PostsCount = 0
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return d.s.Put(userKey(u.ID), b)
}

func (d *DocStore) GetUser(id string) (models.User, error) {
	var u models.User
	b, err := d.s.Get(userKey(id))
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(b, &u); err != nil {
		return u, fmt.Errorf("corrupt user document %s: %w", id, err)
	}
	return u, nil
}

// ListUsers returns all users in creation order.
func (d *DocStore) ListUsers() ([]models.User, error) {
	rows, err := d.s.Scan(userPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(rows))
	for _, kv := range rows {
		var u models.User
		if err := json.Unmarshal(kv.Value, &u); err != nil {
			return nil, fmt.Errorf("corrupt user document at %s: %w", kv.Key, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// FindUserByEmail scans the collection; the source store keeps no email
// index, matching the original layout.
func (d *DocStore) FindUserByEmail(email string) (models.User, bool, error) {
	users, err := d.ListUsers()
	if err != nil {
		return models.User{}, false, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

func (d *DocStore) UpdateUser(u models.User) error {
	return d.InsertUser(u)
}

func (d *DocStore) DeleteUser(id string) error {
	return d.s.Delete(userKey(id))
}

func (d *DocStore) CountUsers() (int, error) {
	return d.s.Count(userPrefix)
}

// --- posts ---

func (d *DocStore) InsertPost(p models.Post) error {
	p.CommentsCount = 0
	p.AuthorPostCount = 0
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return d.s.Put(postKey(p.ID), b)
}

func (d *DocStore) GetPost(id string) (models.Post, error) {
	var p models.Post
	b, err := d.s.Get(postKey(id))
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("corrupt post document %s: %w", id, err)
	}
	return p, nil
}

// ListPosts returns all posts in creation order, comments embedded.
func (d *DocStore) ListPosts() ([]models.Post, error) {
	rows, err := d.s.Scan(postPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(rows))
	for _, kv := range rows {
		var p models.Post
		if err := json.Unmarshal(kv.Value, &p); err != nil {
			return nil, fmt.Errorf("corrupt post document at %s: %w", kv.Key, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *DocStore) UpdatePost(p models.Post) error {
	return d.InsertPost(p)
}

func (d *DocStore) DeletePost(id string) error {
	return d.s.Delete(postKey(id))
}

// DeletePostsByUser removes every post owned by userID and returns how many
// were deleted. Used by the user-delete cascade.
func (d *DocStore) DeletePostsByUser(userID string) (int, error) {
	posts, err := d.ListPosts()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range posts {
		if p.UserID != userID {
			continue
		}
		if err := d.s.Delete(postKey(p.ID)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (d *DocStore) CountPosts() (int, error) {
	return d.s.Count(postPrefix)
}

func (d *DocStore) CountPostsByUser(userID string) (int64, error) {
	posts, err := d.ListPosts()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, p := range posts {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

// --- embedded comments ---

// AppendComment adds a comment to the post document.
func (d *DocStore) AppendComment(postID string, c models.Comment) error {
	p, err := d.GetPost(postID)
	if err != nil {
		return err
	}
	p.Comments = append(p.Comments, c)
	return d.UpdatePost(p)
}

// RemoveComment deletes the comment with the given stable id from the post
// document and returns it. ok is false when no comment matches.
func (d *DocStore) RemoveComment(postID, commentID string) (models.Comment, bool, error) {
	p, err := d.GetPost(postID)
	if err != nil {
		return models.Comment{}, false, err
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			if err := d.UpdatePost(p); err != nil {
				return models.Comment{}, false, err
			}
			return c, true, nil
		}
	}
	return models.Comment{}, false, nil
}
