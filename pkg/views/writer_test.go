package views

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"shiftdb/pkg/store"
)

func newTarget(t *testing.T) *store.Pebble {
	t.Helper()
	p, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func somePost(content string) PostRow {
	return PostRow{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		UserName:  "ada",
		Content:   content,
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestWriteUserFanout(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)
	r := NewReader(db)

	u := UserRow{ID: uuid.New(), Name: "ada", Email: "ada@example.com"}
	rep := w.WriteUser(u)
	if !rep.OK() {
		t.Fatalf("write failed: %v", rep.FirstErr())
	}
	if len(rep.Results) != 2 {
		t.Fatalf("wrote %d views, want 2", len(rep.Results))
	}

	got, err := r.GetUser(u.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got != u {
		t.Fatalf("by id row = %+v, want %+v", got, u)
	}
	byEmail, err := r.GetUserByEmail(u.Email)
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if byEmail != u {
		t.Fatalf("by email row = %+v, want %+v", byEmail, u)
	}
}

func TestWriteUserWithoutEmailSkipsEmailView(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)

	rep := w.WriteUser(UserRow{ID: uuid.New(), Name: "ada"})
	if !rep.OK() {
		t.Fatalf("write failed: %v", rep.FirstErr())
	}
	if len(rep.Results) != 1 {
		t.Fatalf("wrote %d views, want by-id only", len(rep.Results))
	}
}

func TestWritePostFanout(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)
	r := NewReader(db)

	p := somePost("hello world")
	rep := w.WritePost(p)
	if !rep.OK() {
		t.Fatalf("write failed: %v", rep.FirstErr())
	}
	if len(rep.Results) != len(PostViews) {
		t.Fatalf("wrote %d views, want %d", len(rep.Results), len(PostViews))
	}

	got, err := r.GetPost(p.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) || got.ID != p.ID || got.Content != p.Content {
		t.Fatalf("by id row = %+v, want %+v", got, p)
	}

	for name, list := range map[string]func() ([]PostRow, error){
		"by time":    func() ([]PostRow, error) { return r.ListPostsByTime(true) },
		"by author":  r.ListPostsByAuthor,
		"by content": r.ListPostsByContent,
	} {
		rows, err := list()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(rows) != 1 || rows[0].ID != p.ID {
			t.Fatalf("%s returned %d rows", name, len(rows))
		}
	}
}

func TestContentBucket(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"", DefaultBucket},
		{"hello", "H"},
		{"Zebra", "Z"},
		{"1 thing", "1"},
		{"éclair", "É"},
	}
	for _, tc := range cases {
		if got := ContentBucket(tc.content); got != tc.want {
			t.Fatalf("ContentBucket(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}
}

func TestEmptyContentLandsInDefaultBucket(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)

	p := somePost("")
	if err := w.WritePost(p).FirstErr(); err != nil {
		t.Fatal(err)
	}
	rows, err := db.Scan(tblPostsByText + DefaultBucket + "/")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("default bucket has %d rows, want 1", len(rows))
	}
}

func TestUpdatePostContentMovesContentRow(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)
	r := NewReader(db)

	p := somePost("alpha")
	if err := w.WritePost(p).FirstErr(); err != nil {
		t.Fatal(err)
	}
	if err := w.UpdatePostContent(p, "zulu").FirstErr(); err != nil {
		t.Fatal(err)
	}

	rows, err := r.ListPostsByContent()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("content view has %d rows after update, want 1", len(rows))
	}
	if rows[0].Content != "zulu" {
		t.Fatalf("content = %q, want zulu", rows[0].Content)
	}

	// all views carry the new value
	for _, list := range []func() ([]PostRow, error){
		func() ([]PostRow, error) { return r.ListPostsByTime(true) },
		r.ListPostsByAuthor,
	} {
		rows, err := list()
		if err != nil {
			t.Fatal(err)
		}
		if rows[0].Content != "zulu" {
			t.Fatalf("secondary view content = %q, want zulu", rows[0].Content)
		}
	}
}

func TestDeletePostRemovesAllViews(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)
	r := NewReader(db)

	p := somePost("to be removed")
	if err := w.WritePost(p).FirstErr(); err != nil {
		t.Fatal(err)
	}

	canonical, err := r.GetPost(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.DeletePost(canonical).FirstErr(); err != nil {
		t.Fatal(err)
	}

	if _, err := r.GetPost(p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("by id after delete: %v", err)
	}
	for _, prefix := range []string{tblPostsByTime, tblPostsByOwner, tblPostsByText} {
		n, err := db.Count(prefix)
		if err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Fatalf("%s still has %d rows after delete", prefix, n)
		}
	}
}

func TestDeletePostWithStaleFieldsLeavesOrphans(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)

	p := somePost("survivor")
	if err := w.WritePost(p).FirstErr(); err != nil {
		t.Fatal(err)
	}

	// A delete issued without reading the canonical row first cannot
	// reconstruct the field-embedded keys. The by-id row goes, the rest
	// stay behind.
	stale := p
	stale.CreatedAt = time.Time{}
	stale.Content = ""
	if w.DeletePost(stale).FirstErr() != nil {
		t.Fatal("deletes of absent keys should not error")
	}

	for _, prefix := range []string{tblPostsByTime, tblPostsByText} {
		n, err := db.Count(prefix)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("%s has %d rows, want 1 orphan", prefix, n)
		}
	}
}

func TestCommentPartition(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(db)
	r := NewReader(db)

	post := uuid.New()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		c := CommentRow{
			PostID:    post,
			ID:        uuid.New(),
			UserID:    uuid.New(),
			UserName:  "bob",
			Content:   strings.Repeat("x", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		ids = append(ids, c.ID)
		if err := w.WriteComment(c).FirstErr(); err != nil {
			t.Fatal(err)
		}
	}
	// a comment on another post does not leak into the partition
	other := CommentRow{PostID: uuid.New(), ID: uuid.New(), CreatedAt: base}
	if err := w.WriteComment(other).FirstErr(); err != nil {
		t.Fatal(err)
	}

	rows, err := r.ListComments(post)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("partition has %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		if row.ID != ids[i] {
			t.Fatalf("row %d out of creation order", i)
		}
	}

	n, err := w.DeleteComments(post)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("deleted %d comments, want 3", n)
	}
	left, err := r.ListComments(other.PostID)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 {
		t.Fatalf("other partition has %d rows, want 1", len(left))
	}
}

// flakyStore fails writes whose key matches a prefix; everything else goes
// to the wrapped store.
type flakyStore struct {
	store.Store
	failPrefix string
}

var errInjected = errors.New("injected store failure")

func (f *flakyStore) Put(key string, value []byte) error {
	if strings.HasPrefix(key, f.failPrefix) {
		return errInjected
	}
	return f.Store.Put(key, value)
}

func TestWritePostPartialFailure(t *testing.T) {
	db := newTarget(t)
	w := NewWriter(&flakyStore{Store: db, failPrefix: tblPostsByText})
	r := NewReader(db)

	p := somePost("doomed view")
	rep := w.WritePost(p)
	if rep.OK() {
		t.Fatal("report claims success with a failing view")
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0].View != ByContent {
		t.Fatalf("failed views = %+v, want by_content only", failed)
	}
	if !errors.Is(rep.FirstErr(), errInjected) {
		t.Fatalf("FirstErr = %v", rep.FirstErr())
	}

	// the other views took the write
	if _, err := r.GetPost(p.ID); err != nil {
		t.Fatalf("by id after partial failure: %v", err)
	}
	rows, err := r.ListPostsByTime(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("by time has %d rows, want 1", len(rows))
	}
	content, err := r.ListPostsByContent()
	if err != nil {
		t.Fatal(err)
	}
	if len(content) != 0 {
		t.Fatalf("by content has %d rows, want 0", len(content))
	}
}
