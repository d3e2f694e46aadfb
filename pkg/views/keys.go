package views

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Each view is a key range in the target store. Keys are built as
// <table>/<partition>/<clustering...> so a prefix scan over a table or a
// partition returns its rows in clustering order.
const (
	tblUsers        = "users/"
	tblUsersByEmail = "users_by_email/"
	tblPostsByTime  = "posts/"
	tblPostsByOwner = "posts_by_author/"
	tblPostsByText  = "posts_by_content/"
	tblPostsByID    = "posts_by_id/"
	tblComments     = "comments/"
	tblOwnerCounts  = "author_post_counts/"
)

// DefaultBucket receives posts whose content is empty.
const DefaultBucket = "A"

// ContentBucket returns the single-character partition for a content
// string: the uppercased first character, or DefaultBucket when empty.
func ContentBucket(content string) string {
	if content == "" {
		return DefaultBucket
	}
	r, _ := utf8.DecodeRuneInString(content)
	return strings.ToUpper(string(r))
}

// tsPart renders a timestamp as a fixed-width sortable key component.
func tsPart(t time.Time) string {
	return fmt.Sprintf("%020d", t.UTC().UnixNano())
}

// datePart is the day bucket for the by-time view.
func datePart(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// escape keeps free-text key components (content, email) from colliding
// with the key separator. Ordering within a partition follows the escaped
// form, which matches the raw form for plain alphanumeric text.
func escape(s string) string {
	return url.PathEscape(s)
}

func userKey(id uuid.UUID) string   { return tblUsers + id.String() }
func emailKey(email string) string  { return tblUsersByEmail + escape(email) }
func postIDKey(id uuid.UUID) string { return tblPostsByID + id.String() }

// OwnerCountKey addresses the per-owner post counter. The counter table
// lives in the target keyspace next to the views it summarizes; the
// aggregate maintainer owns the arithmetic.
func OwnerCountKey(id uuid.UUID) string { return tblOwnerCounts + id.String() }

func postTimeKey(createdAt time.Time, id uuid.UUID) string {
	return tblPostsByTime + datePart(createdAt) + "/" + tsPart(createdAt) + "/" + id.String()
}

func postOwnerKey(owner uuid.UUID, createdAt time.Time, id uuid.UUID) string {
	return tblPostsByOwner + owner.String() + "/" + tsPart(createdAt) + "/" + id.String()
}

func postTextKey(content string, id uuid.UUID) string {
	return tblPostsByText + ContentBucket(content) + "/" + escape(content) + "/" + id.String()
}

func commentKey(post uuid.UUID, createdAt time.Time, id uuid.UUID) string {
	return tblComments + post.String() + "/" + tsPart(createdAt) + "/" + id.String()
}

func commentPartition(post uuid.UUID) string {
	return tblComments + post.String() + "/"
}
