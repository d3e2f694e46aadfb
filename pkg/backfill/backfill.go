// Package backfill copies existing source data into the target views.
// It is idempotent: view writes are plain puts keyed deterministically,
// so re-running it overwrites rows with identical content. The counter
// application is the exception, see Run.
package backfill

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shiftdb/pkg/counters"
	"shiftdb/pkg/ids"
	"shiftdb/pkg/logger"
	"shiftdb/pkg/metrics"
	"shiftdb/pkg/source"
	"shiftdb/pkg/views"
)

// Counts tallies one entity kind's outcome.
type Counts struct {
	Migrated int `json:"migrated"`
	Errors   int `json:"errors"`
}

// Report is the outcome of a full backfill run.
type Report struct {
	Users    Counts `json:"users"`
	Posts    Counts `json:"posts"`
	Comments Counts `json:"comments"`
}

// Engine walks the source store and fans each document out to the target
// views. Per-item failures are logged and counted, never fatal; context
// cancellation stops the run.
type Engine struct {
	src     *source.DocStore
	writer  *views.Writer
	counts  *counters.Maintainer
	limiter *rate.Limiter
}

// New builds an engine pacing writes at ratePerSec items per second.
// A non-positive rate disables pacing.
func New(src *source.DocStore, w *views.Writer, c *counters.Maintainer, ratePerSec float64) *Engine {
	var lim *rate.Limiter
	if ratePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &Engine{src: src, writer: w, counts: c, limiter: lim}
}

func (e *Engine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return ctx.Err()
	}
	return e.limiter.Wait(ctx)
}

// Run migrates users, then posts with their comments, then applies the
// accumulated per-owner post totals as one counter merge per owner.
// Applying totals in one step keeps a crashed run's partial counter
// damage bounded to whole owners.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	var rep Report

	users, err := e.src.ListUsers()
	if err != nil {
		return rep, err
	}
	for _, u := range users {
		if err := e.wait(ctx); err != nil {
			return rep, err
		}
		tgt, err := ids.ToTargetID(u.ID)
		if err != nil {
			e.fail(&rep.Users, "user", u.ID, err)
			continue
		}
		wr := e.writer.WriteUser(views.UserRow{ID: tgt, Name: u.Name, Email: u.Email})
		if err := wr.FirstErr(); err != nil {
			e.fail(&rep.Users, "user", u.ID, err)
			continue
		}
		rep.Users.Migrated++
		metrics.BackfillMigrated.WithLabelValues("user").Inc()
	}

	posts, err := e.src.ListPosts()
	if err != nil {
		return rep, err
	}
	perOwner := make(map[uuid.UUID]int64)
	for _, p := range posts {
		if err := e.wait(ctx); err != nil {
			return rep, err
		}
		row, err := postRow(p.ID, p.UserID, p.UserName, p.Content, p.CreatedAt)
		if err != nil {
			e.fail(&rep.Posts, "post", p.ID, err)
			continue
		}
		if err := e.writer.WritePost(row).FirstErr(); err != nil {
			e.fail(&rep.Posts, "post", p.ID, err)
			continue
		}
		rep.Posts.Migrated++
		metrics.BackfillMigrated.WithLabelValues("post").Inc()
		perOwner[row.UserID]++

		for _, c := range p.Comments {
			if err := e.wait(ctx); err != nil {
				return rep, err
			}
			cid, err := ids.ToTargetID(c.ID)
			if err != nil {
				e.fail(&rep.Comments, "comment", c.ID, err)
				continue
			}
			uid, err := ids.ToTargetID(c.UserID)
			if err != nil {
				e.fail(&rep.Comments, "comment", c.ID, err)
				continue
			}
			wr := e.writer.WriteComment(views.CommentRow{
				PostID:    row.ID,
				ID:        cid,
				UserID:    uid,
				UserName:  c.UserName,
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
			})
			if err := wr.FirstErr(); err != nil {
				e.fail(&rep.Comments, "comment", c.ID, err)
				continue
			}
			rep.Comments.Migrated++
			metrics.BackfillMigrated.WithLabelValues("comment").Inc()
		}
	}

	for owner, n := range perOwner {
		if err := e.counts.Add(owner, n); err != nil {
			logger.Warn("backfill_counter_failed",
				zap.String("owner", ids.ToSourceID(owner)), zap.Error(err))
			metrics.BackfillErrors.WithLabelValues("counter").Inc()
		}
	}

	logger.Info("backfill_complete",
		zap.Int("users", rep.Users.Migrated),
		zap.Int("posts", rep.Posts.Migrated),
		zap.Int("comments", rep.Comments.Migrated),
		zap.Int("errors", rep.Users.Errors+rep.Posts.Errors+rep.Comments.Errors))
	return rep, nil
}

func postRow(id, userID, userName, content string, createdAt time.Time) (views.PostRow, error) {
	pid, err := ids.ToTargetID(id)
	if err != nil {
		return views.PostRow{}, err
	}
	uid, err := ids.ToTargetID(userID)
	if err != nil {
		return views.PostRow{}, err
	}
	return views.PostRow{
		ID:        pid,
		UserID:    uid,
		UserName:  userName,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

func (e *Engine) fail(c *Counts, entity, id string, err error) {
	c.Errors++
	metrics.BackfillErrors.WithLabelValues(entity).Inc()
	logger.Warn("backfill_item_failed",
		zap.String("entity", entity), zap.String("id", id), zap.Error(err))
}
