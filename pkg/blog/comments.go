package blog

import (
	"fmt"
	"time"

	"shiftdb/pkg/ids"
	"shiftdb/pkg/migrate"
	"shiftdb/pkg/models"
	"shiftdb/pkg/views"
)

// CreateComment appends a comment to a post. While the source store is
// written the comment id is minted in its id space and translated; once
// writes are target-only the id comes from the target's own space, so it
// has no source form to translate back through.
func (s *Service) CreateComment(postID, userID, content string) (models.Comment, error) {
	if content == "" {
		return models.Comment{}, fmt.Errorf("%w: content is required", ErrValidation)
	}
	post, err := ids.ToTargetID(postID)
	if err != nil {
		return models.Comment{}, err
	}
	owner, err := ids.ToTargetID(userID)
	if err != nil {
		return models.Comment{}, err
	}

	if s.Phase().WritesSource() {
		author, err := s.src.GetUser(userID)
		if err != nil {
			return models.Comment{}, mapErr(err)
		}
		if _, err := s.src.GetPost(postID); err != nil {
			return models.Comment{}, mapErr(err)
		}
		c := models.Comment{
			ID:        ids.NewSourceID(),
			UserID:    userID,
			UserName:  author.Name,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.src.AppendComment(postID, c); err != nil {
			return models.Comment{}, err
		}
		if s.Phase().WritesTarget() {
			cid, _ := ids.ToTargetID(c.ID)
			rep := s.writer.WriteComment(views.CommentRow{
				PostID:    post,
				ID:        cid,
				UserID:    owner,
				UserName:  author.Name,
				Content:   content,
				CreatedAt: c.CreatedAt,
			})
			s.advisory("comment", rep)
		}
		return c, nil
	}

	author, err := s.reader.GetUser(owner)
	if err != nil {
		return models.Comment{}, mapErr(err)
	}
	if _, err := s.reader.GetPost(post); err != nil {
		return models.Comment{}, mapErr(err)
	}
	row := views.CommentRow{
		PostID:    post,
		ID:        ids.NewTargetID(),
		UserID:    owner,
		UserName:  author.Name,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.writer.WriteComment(row).FirstErr(); err != nil {
		return models.Comment{}, err
	}
	return commentModel(row), nil
}

// ListComments returns a post's comments in creation order.
func (s *Service) ListComments(postID string) ([]models.Comment, migrate.Provenance, error) {
	post, err := ids.ToTargetID(postID)
	if err != nil {
		return nil, "", err
	}
	var out []models.Comment
	prov, err := s.coord.Read(
		func() error {
			rows, err := s.reader.ListComments(post)
			if err != nil {
				return err
			}
			out = make([]models.Comment, 0, len(rows))
			for _, row := range rows {
				out = append(out, commentModel(row))
			}
			return nil
		},
		func() error {
			p, err := s.src.GetPost(postID)
			if err != nil {
				return err
			}
			out = append([]models.Comment{}, p.Comments...)
			return nil
		},
		retriable,
	)
	return out, prov, mapErr(err)
}

// DeleteComment removes a comment by its id.
func (s *Service) DeleteComment(postID, commentID string) (models.Comment, error) {
	post, err := ids.ToTargetID(postID)
	if err != nil {
		return models.Comment{}, err
	}
	if !ids.Valid(commentID) {
		return models.Comment{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, commentID)
	}

	if s.Phase().WritesSource() {
		c, found, err := s.src.RemoveComment(postID, commentID)
		if err != nil {
			return models.Comment{}, mapErr(err)
		}
		if !found {
			return models.Comment{}, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
		}
		if s.Phase().WritesTarget() {
			cid, _ := ids.ToTargetID(c.ID)
			rep := s.writer.DeleteComment(views.CommentRow{
				PostID:    post,
				ID:        cid,
				CreatedAt: c.CreatedAt,
			})
			s.advisory("comment", rep)
		}
		return c, nil
	}

	row, found, err := s.commentRowByExternalID(post, commentID)
	if err != nil {
		return models.Comment{}, mapErr(err)
	}
	if !found {
		return models.Comment{}, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
	}
	if err := s.writer.DeleteComment(row).FirstErr(); err != nil {
		return models.Comment{}, err
	}
	return commentModel(row), nil
}
