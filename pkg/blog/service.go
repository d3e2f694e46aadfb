// Package blog is the one parameterized pipeline behind the REST surface:
// every user, post and comment operation, routed per the current migration
// phase. The four per-phase service variants of the system this replaces
// collapse into this package plus the coordinator's routing.
package blog

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftdb/pkg/counters"
	"shiftdb/pkg/ids"
	"shiftdb/pkg/logger"
	"shiftdb/pkg/metrics"
	"shiftdb/pkg/migrate"
	"shiftdb/pkg/models"
	"shiftdb/pkg/source"
	"shiftdb/pkg/views"
)

// Service executes entity operations against whichever stores the phase
// prescribes. src may be nil only in TargetOnly deployments.
type Service struct {
	coord  *migrate.Coordinator
	src    *source.DocStore
	reader *views.Reader
	writer *views.Writer
	counts *counters.Maintainer
}

func NewService(coord *migrate.Coordinator, src *source.DocStore, rd *views.Reader, wr *views.Writer, cnt *counters.Maintainer) *Service {
	return &Service{coord: coord, src: src, reader: rd, writer: wr, counts: cnt}
}

func (s *Service) Phase() migrate.Phase { return s.coord.Phase() }

// advisory logs and counts swallowed secondary-store failures. The request
// already succeeded against the authoritative store; these only widen the
// consistency gap the verifier watches for.
func (s *Service) advisory(entity string, rep views.WriteReport) {
	for _, f := range rep.Failed() {
		logger.Warn("secondary_write_failed",
			zap.String("entity", entity),
			zap.String("view", string(f.View)),
			zap.String("key", f.Key),
			zap.Error(f.Err))
		metrics.SecondaryWriteFailures.WithLabelValues(entity, string(f.View)).Inc()
	}
}

func (s *Service) advisoryErr(entity, view string, err error) {
	if err == nil {
		return
	}
	logger.Warn("secondary_write_failed",
		zap.String("entity", entity),
		zap.String("view", view),
		zap.Error(err))
	metrics.SecondaryWriteFailures.WithLabelValues(entity, view).Inc()
}

// --- model/row conversions; ids cross the boundary here ---

func userModel(row views.UserRow, postsCount int64) models.User {
	return models.User{
		ID:         ids.ToSourceID(row.ID),
		Name:       row.Name,
		Email:      row.Email,
		PostsCount: postsCount,
	}
}

func postRow(p models.Post) (views.PostRow, error) {
	pid, err := ids.ToTargetID(p.ID)
	if err != nil {
		return views.PostRow{}, err
	}
	uid, err := ids.ToTargetID(p.UserID)
	if err != nil {
		return views.PostRow{}, err
	}
	return views.PostRow{
		ID:        pid,
		UserID:    uid,
		UserName:  p.UserName,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}, nil
}

func postModel(row views.PostRow) models.Post {
	return models.Post{
		ID:        ids.ToSourceID(row.ID),
		UserID:    ids.ToSourceID(row.UserID),
		UserName:  row.UserName,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
	}
}

func commentModel(row views.CommentRow) models.Comment {
	return models.Comment{
		ID:        ids.ToSourceID(row.ID),
		UserID:    ids.ToSourceID(row.UserID),
		UserName:  row.UserName,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
	}
}

// commentRowByExternalID scans a post's comment partition for the row
// whose external form matches id. Comment ids minted in the target key
// space have no source id to translate through, so matching happens on
// the display form.
func (s *Service) commentRowByExternalID(post uuid.UUID, id string) (views.CommentRow, bool, error) {
	rows, err := s.reader.ListComments(post)
	if err != nil {
		return views.CommentRow{}, false, err
	}
	for _, row := range rows {
		if ids.ToSourceID(row.ID) == id {
			return row, true, nil
		}
	}
	return views.CommentRow{}, false, nil
}
