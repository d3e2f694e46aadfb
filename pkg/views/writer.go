// Package views maintains the denormalized physical copies of each logical
// entity in the target store: one row per access pattern, keys derived from
// entity fields. Writes fan out per view and are not transactional across
// views; the WriteReport tells the caller exactly which views took the
// write.
package views

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"shiftdb/pkg/store"
)

// WriteResult is the outcome of one view write or delete.
type WriteResult struct {
	View ViewKind
	Key  string
	Err  error
}

// WriteReport collects per-view outcomes for one logical mutation. A failed
// view does not roll back views already written; the caller decides whether
// partial success is acceptable.
type WriteReport struct {
	Results []WriteResult
}

func (r *WriteReport) add(view ViewKind, key string, err error) {
	r.Results = append(r.Results, WriteResult{View: view, Key: key, Err: err})
}

// OK reports whether every view took the write.
func (r WriteReport) OK() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the results that carry an error.
func (r WriteReport) Failed() []WriteResult {
	var out []WriteResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// FirstErr returns the first view error, or nil.
func (r WriteReport) FirstErr() error {
	for _, res := range r.Results {
		if res.Err != nil {
			return fmt.Errorf("view %s at %s: %w", res.View, res.Key, res.Err)
		}
	}
	return nil
}

// Writer fans one logical mutation out to every applicable view in the
// target store.
type Writer struct {
	t store.Store
}

func NewWriter(t store.Store) *Writer {
	return &Writer{t: t}
}

func (w *Writer) put(rep *WriteReport, view ViewKind, key string, row any) {
	b, err := json.Marshal(row)
	if err != nil {
		rep.add(view, key, err)
		return
	}
	rep.add(view, key, w.t.Put(key, b))
}

func (w *Writer) del(rep *WriteReport, view ViewKind, key string) {
	rep.add(view, key, w.t.Delete(key))
}

// WriteUser upserts the user into its views. An empty email gets no
// by-email row.
func (w *Writer) WriteUser(u UserRow) WriteReport {
	var rep WriteReport
	w.put(&rep, ByID, userKey(u.ID), u)
	if u.Email != "" {
		w.put(&rep, ByEmail, emailKey(u.Email), u)
	}
	return rep
}

// DeleteUser removes the user's view rows. The email must be the last known
// value; the by-email row cannot be found from the id alone.
func (w *Writer) DeleteUser(u UserRow) WriteReport {
	var rep WriteReport
	w.del(&rep, ByID, userKey(u.ID))
	if u.Email != "" {
		w.del(&rep, ByEmail, emailKey(u.Email))
	}
	return rep
}

// DeleteEmailRow removes a single by-email row, used when an update moves a
// user to a new email.
func (w *Writer) DeleteEmailRow(email string) error {
	if email == "" {
		return nil
	}
	return w.t.Delete(emailKey(email))
}

// WritePost upserts the post into the requested views, or all post views
// when none are named. Keys are derived from the row's fields: day bucket
// from CreatedAt, owner partition from UserID, content bucket from Content.
func (w *Writer) WritePost(p PostRow, kinds ...ViewKind) WriteReport {
	if len(kinds) == 0 {
		kinds = PostViews
	}
	var rep WriteReport
	for _, k := range kinds {
		switch k {
		case ByID:
			w.put(&rep, ByID, postIDKey(p.ID), p)
		case ByTime:
			w.put(&rep, ByTime, postTimeKey(p.CreatedAt, p.ID), p)
		case ByOwner:
			w.put(&rep, ByOwner, postOwnerKey(p.UserID, p.CreatedAt, p.ID), p)
		case ByContent:
			w.put(&rep, ByContent, postTextKey(p.Content, p.ID), p)
		default:
			rep.add(k, "", fmt.Errorf("view %s does not apply to posts", k))
		}
	}
	return rep
}

// UpdatePostContent rewrites the post's views for a content change. The
// content view is partition-affected (content is in its key), so its old
// row is deleted and a new one inserted; the other views keep their keys
// and get a plain value update. old must be the canonical by-id row as last
// stored.
func (w *Writer) UpdatePostContent(old PostRow, content string) WriteReport {
	updated := old
	updated.Content = content

	var rep WriteReport
	oldKey := postTextKey(old.Content, old.ID)
	newKey := postTextKey(content, old.ID)
	if oldKey != newKey {
		w.del(&rep, ByContent, oldKey)
	}
	w.put(&rep, ByContent, newKey, updated)
	w.put(&rep, ByID, postIDKey(updated.ID), updated)
	w.put(&rep, ByTime, postTimeKey(updated.CreatedAt, updated.ID), updated)
	w.put(&rep, ByOwner, postOwnerKey(updated.UserID, updated.CreatedAt, updated.ID), updated)
	return rep
}

// DeletePost removes every view row for the post. The row must carry the
// post's last known field values: the by-time, by-owner and by-content keys
// embed CreatedAt, UserID and Content, so a delete issued with stale or
// zero fields silently misses those rows and leaves orphans.
func (w *Writer) DeletePost(p PostRow) WriteReport {
	var rep WriteReport
	w.del(&rep, ByTime, postTimeKey(p.CreatedAt, p.ID))
	w.del(&rep, ByOwner, postOwnerKey(p.UserID, p.CreatedAt, p.ID))
	w.del(&rep, ByContent, postTextKey(p.Content, p.ID))
	w.del(&rep, ByID, postIDKey(p.ID))
	return rep
}

// WriteComment upserts one comment row into the post's comment partition.
func (w *Writer) WriteComment(c CommentRow) WriteReport {
	var rep WriteReport
	w.put(&rep, Comments, commentKey(c.PostID, c.CreatedAt, c.ID), c)
	return rep
}

// DeleteComment removes one comment row; CreatedAt must be the stored
// value, since it is part of the clustering key.
func (w *Writer) DeleteComment(c CommentRow) WriteReport {
	var rep WriteReport
	w.del(&rep, Comments, commentKey(c.PostID, c.CreatedAt, c.ID))
	return rep
}

// DeleteComments drops the whole comment partition of a post and returns
// how many rows were removed.
func (w *Writer) DeleteComments(post uuid.UUID) (int, error) {
	rows, err := w.t.Scan(commentPartition(post))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, kv := range rows {
		if err := w.t.Delete(kv.Key); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
