package views

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"shiftdb/pkg/store"
)

// Reader serves point lookups and per-view scans from the target store.
// Each sort order the API offers maps onto exactly one view's key order.
type Reader struct {
	t store.Store
}

func NewReader(t store.Store) *Reader {
	return &Reader{t: t}
}

func (r *Reader) GetUser(id uuid.UUID) (UserRow, error) {
	var u UserRow
	b, err := r.t.Get(userKey(id))
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(b, &u); err != nil {
		return u, fmt.Errorf("corrupt user row %s: %w", id, err)
	}
	return u, nil
}

func (r *Reader) GetUserByEmail(email string) (UserRow, error) {
	var u UserRow
	b, err := r.t.Get(emailKey(email))
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(b, &u); err != nil {
		return u, fmt.Errorf("corrupt by-email row %q: %w", email, err)
	}
	return u, nil
}

func (r *Reader) ListUsers() ([]UserRow, error) {
	rows, err := r.t.Scan(tblUsers)
	if err != nil {
		return nil, err
	}
	out := make([]UserRow, 0, len(rows))
	for _, kv := range rows {
		var u UserRow
		if err := json.Unmarshal(kv.Value, &u); err != nil {
			return nil, fmt.Errorf("corrupt user row at %s: %w", kv.Key, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// GetPost returns the canonical by-id row. Delete and update paths must go
// through here first: the other views can only be addressed with the field
// values this row holds.
func (r *Reader) GetPost(id uuid.UUID) (PostRow, error) {
	var p PostRow
	b, err := r.t.Get(postIDKey(id))
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("corrupt post row %s: %w", id, err)
	}
	return p, nil
}

func (r *Reader) scanPosts(prefix string) ([]PostRow, error) {
	rows, err := r.t.Scan(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]PostRow, 0, len(rows))
	for _, kv := range rows {
		var p PostRow
		if err := json.Unmarshal(kv.Value, &p); err != nil {
			return nil, fmt.Errorf("corrupt post row at %s: %w", kv.Key, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ListPostsByTime returns posts ordered by creation time, newest first when
// desc is set.
func (r *Reader) ListPostsByTime(desc bool) ([]PostRow, error) {
	posts, err := r.scanPosts(tblPostsByTime)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if desc {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return posts, nil
}

// ListPostsByAuthor returns posts grouped per owner, then ordered by the
// author's display name.
func (r *Reader) ListPostsByAuthor() ([]PostRow, error) {
	posts, err := r.scanPosts(tblPostsByOwner)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return strings.ToLower(posts[i].UserName) < strings.ToLower(posts[j].UserName)
	})
	return posts, nil
}

// ListPostsByContent returns posts in content-bucket key order, which is
// lexicographic by content within each bucket.
func (r *Reader) ListPostsByContent() ([]PostRow, error) {
	return r.scanPosts(tblPostsByText)
}

func (r *Reader) ListComments(post uuid.UUID) ([]CommentRow, error) {
	rows, err := r.t.Scan(commentPartition(post))
	if err != nil {
		return nil, err
	}
	out := make([]CommentRow, 0, len(rows))
	for _, kv := range rows {
		var c CommentRow
		if err := json.Unmarshal(kv.Value, &c); err != nil {
			return nil, fmt.Errorf("corrupt comment row at %s: %w", kv.Key, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Reader) CountComments(post uuid.UUID) (int, error) {
	return r.t.Count(commentPartition(post))
}

// CountUsers and CountPosts count by-id rows only; they are the verifier's
// coarse signal and say nothing about the secondary views.
func (r *Reader) CountUsers() (int, error) {
	return r.t.Count(tblUsers)
}

func (r *Reader) CountPosts() (int, error) {
	return r.t.Count(tblPostsByID)
}
