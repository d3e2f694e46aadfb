// Package verify compares entity counts between the source store and the
// target's canonical views. Counts are the cheap signal: a mismatch means
// fan-out or backfill lost rows somewhere and is worth a deeper look.
package verify

import (
	"go.uber.org/zap"

	"shiftdb/pkg/logger"
	"shiftdb/pkg/metrics"
	"shiftdb/pkg/source"
	"shiftdb/pkg/views"
)

// Report holds one verification pass. Post counts compare the by-id view
// only; secondary views are derived and not independently authoritative.
type Report struct {
	SourceUsers int  `json:"source_users"`
	TargetUsers int  `json:"target_users"`
	UsersMatch  bool `json:"users_match"`

	SourcePosts int  `json:"source_posts"`
	TargetPosts int  `json:"target_posts"`
	PostsMatch  bool `json:"posts_match"`
}

// Match reports whether every collection agreed.
func (r Report) Match() bool { return r.UsersMatch && r.PostsMatch }

// Verifier runs count comparisons between the two stores.
type Verifier struct {
	src    *source.DocStore
	reader *views.Reader
}

func New(src *source.DocStore, rd *views.Reader) *Verifier {
	return &Verifier{src: src, reader: rd}
}

// Run performs one comparison pass and records the outcome in the match
// gauges.
func (v *Verifier) Run() (Report, error) {
	var rep Report
	var err error

	if rep.SourceUsers, err = v.src.CountUsers(); err != nil {
		return rep, err
	}
	if rep.TargetUsers, err = v.reader.CountUsers(); err != nil {
		return rep, err
	}
	rep.UsersMatch = rep.SourceUsers == rep.TargetUsers

	if rep.SourcePosts, err = v.src.CountPosts(); err != nil {
		return rep, err
	}
	if rep.TargetPosts, err = v.reader.CountPosts(); err != nil {
		return rep, err
	}
	rep.PostsMatch = rep.SourcePosts == rep.TargetPosts

	gauge(rep.UsersMatch, "users")
	gauge(rep.PostsMatch, "posts")

	if rep.Match() {
		logger.Info("verify_match",
			zap.Int("users", rep.SourceUsers), zap.Int("posts", rep.SourcePosts))
	} else {
		logger.Warn("verify_mismatch",
			zap.Int("source_users", rep.SourceUsers), zap.Int("target_users", rep.TargetUsers),
			zap.Int("source_posts", rep.SourcePosts), zap.Int("target_posts", rep.TargetPosts))
	}
	return rep, nil
}

func gauge(match bool, collection string) {
	val := 0.0
	if match {
		val = 1.0
	}
	metrics.VerifyMatch.WithLabelValues(collection).Set(val)
}
