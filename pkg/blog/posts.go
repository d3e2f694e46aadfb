package blog

import (
	"sort"
	"strings"
	"time"

	"shiftdb/pkg/ids"
	"shiftdb/pkg/migrate"
	"shiftdb/pkg/models"
	"shiftdb/pkg/views"
)

// Post list orderings. Anything unrecognized collapses to SortLatest.
const (
	SortLatest  = "latest"
	SortOldest  = "oldest"
	SortAuthor  = "author"
	SortContent = "content"
)

// NormalizeSort maps a client-supplied sort name onto one of the supported
// orderings.
func NormalizeSort(s string) string {
	switch strings.ToLower(s) {
	case SortOldest:
		return SortOldest
	case SortAuthor:
		return SortAuthor
	case SortContent:
		return SortContent
	default:
		return SortLatest
	}
}

// CreatePost creates a post for the given author and bumps their post
// counter. Empty content is a valid post; it files under the default
// content bucket. Presence of the field is the API layer's check.
func (s *Service) CreatePost(userID, content string) (models.Post, error) {
	owner, err := ids.ToTargetID(userID)
	if err != nil {
		return models.Post{}, err
	}

	if s.Phase().WritesSource() {
		author, err := s.src.GetUser(userID)
		if err != nil {
			return models.Post{}, mapErr(err)
		}
		p := models.Post{
			ID:        ids.NewSourceID(),
			UserID:    userID,
			UserName:  author.Name,
			Content:   content,
			CreatedAt: time.Now().UTC(),
			Comments:  []models.Comment{},
		}
		if err := s.src.InsertPost(p); err != nil {
			return models.Post{}, err
		}
		if s.Phase().WritesTarget() {
			row, err := postRow(p)
			if err != nil {
				return models.Post{}, err
			}
			s.advisory("post", s.writer.WritePost(row))
			s.advisoryErr("post", "counter", s.counts.Increment(owner))
		}
		return p, nil
	}

	author, err := s.reader.GetUser(owner)
	if err != nil {
		return models.Post{}, mapErr(err)
	}
	pid, _ := ids.ToTargetID(ids.NewSourceID())
	row := views.PostRow{
		ID:        pid,
		UserID:    owner,
		UserName:  author.Name,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.writer.WritePost(row).FirstErr(); err != nil {
		return models.Post{}, err
	}
	if err := s.counts.Increment(owner); err != nil {
		return models.Post{}, err
	}
	p := postModel(row)
	p.Comments = []models.Comment{}
	return p, nil
}

// GetPost returns a single post with its comments and the author's current
// post count.
func (s *Service) GetPost(id string) (models.Post, migrate.Provenance, error) {
	tgt, err := ids.ToTargetID(id)
	if err != nil {
		return models.Post{}, "", err
	}
	var out models.Post
	prov, err := s.coord.Read(
		func() error {
			row, err := s.reader.GetPost(tgt)
			if err != nil {
				return err
			}
			crows, err := s.reader.ListComments(tgt)
			if err != nil {
				return err
			}
			n, err := s.counts.Read(row.UserID)
			if err != nil {
				return err
			}
			p := postModel(row)
			p.Comments = make([]models.Comment, 0, len(crows))
			for _, c := range crows {
				p.Comments = append(p.Comments, commentModel(c))
			}
			p.CommentsCount = len(crows)
			p.AuthorPostCount = n
			out = p
			return nil
		},
		func() error {
			p, err := s.src.GetPost(id)
			if err != nil {
				return err
			}
			n, err := s.src.CountPostsByUser(p.UserID)
			if err != nil {
				return err
			}
			p.CommentsCount = len(p.Comments)
			p.AuthorPostCount = n
			out = p
			return nil
		},
		retriable,
	)
	return out, prov, mapErr(err)
}

// ListPosts returns posts in the requested ordering. sortBy must already be
// normalized.
func (s *Service) ListPosts(sortBy string) ([]models.Post, migrate.Provenance, error) {
	var out []models.Post
	prov, err := s.coord.Read(
		func() error {
			var rows []views.PostRow
			var err error
			switch sortBy {
			case SortOldest:
				rows, err = s.reader.ListPostsByTime(false)
			case SortAuthor:
				rows, err = s.reader.ListPostsByAuthor()
			case SortContent:
				rows, err = s.reader.ListPostsByContent()
			default:
				rows, err = s.reader.ListPostsByTime(true)
			}
			if err != nil {
				return err
			}
			out = make([]models.Post, 0, len(rows))
			for _, row := range rows {
				p := postModel(row)
				n, err := s.reader.CountComments(row.ID)
				if err != nil {
					return err
				}
				p.CommentsCount = n
				out = append(out, p)
			}
			return nil
		},
		func() error {
			posts, err := s.src.ListPosts()
			if err != nil {
				return err
			}
			switch sortBy {
			case SortOldest:
				sort.SliceStable(posts, func(i, j int) bool {
					return posts[i].CreatedAt.Before(posts[j].CreatedAt)
				})
			case SortAuthor:
				sort.SliceStable(posts, func(i, j int) bool {
					return strings.ToLower(posts[i].UserName) < strings.ToLower(posts[j].UserName)
				})
			case SortContent:
				sort.SliceStable(posts, func(i, j int) bool {
					return posts[i].Content < posts[j].Content
				})
			default:
				sort.SliceStable(posts, func(i, j int) bool {
					return posts[i].CreatedAt.After(posts[j].CreatedAt)
				})
			}
			out = make([]models.Post, 0, len(posts))
			for _, p := range posts {
				p.CommentsCount = len(p.Comments)
				p.Comments = nil
				out = append(out, p)
			}
			return nil
		},
		retriable,
	)
	return out, prov, mapErr(err)
}

// UpdatePost replaces a post's content. The by-content view is keyed on the
// content itself, so the old row has to move, not just be overwritten.
func (s *Service) UpdatePost(id, content string) (models.Post, error) {
	tgt, err := ids.ToTargetID(id)
	if err != nil {
		return models.Post{}, err
	}

	if s.Phase().WritesSource() {
		p, err := s.src.GetPost(id)
		if err != nil {
			return models.Post{}, mapErr(err)
		}
		oldRow, err := postRow(p)
		if err != nil {
			return models.Post{}, err
		}
		p.Content = content
		if err := s.src.UpdatePost(p); err != nil {
			return models.Post{}, err
		}
		if s.Phase().WritesTarget() {
			s.advisory("post", s.writer.UpdatePostContent(oldRow, content))
		}
		return p, nil
	}

	oldRow, err := s.reader.GetPost(tgt)
	if err != nil {
		return models.Post{}, mapErr(err)
	}
	if err := s.writer.UpdatePostContent(oldRow, content).FirstErr(); err != nil {
		return models.Post{}, err
	}
	oldRow.Content = content
	return postModel(oldRow), nil
}

// DeletePost removes a post, its comment partition, and decrements the
// author's counter. The canonical row is read first so the time, owner and
// content keys can be reconstructed from its fields.
func (s *Service) DeletePost(id string) (models.Post, error) {
	tgt, err := ids.ToTargetID(id)
	if err != nil {
		return models.Post{}, err
	}

	if s.Phase().WritesSource() {
		p, err := s.src.GetPost(id)
		if err != nil {
			return models.Post{}, mapErr(err)
		}
		if err := s.src.DeletePost(id); err != nil {
			return models.Post{}, err
		}
		if s.Phase().WritesTarget() {
			row, err := postRow(p)
			if err != nil {
				return models.Post{}, err
			}
			s.advisory("post", s.writer.DeletePost(row))
			if _, err := s.writer.DeleteComments(tgt); err != nil {
				s.advisoryErr("comment", string(views.Comments), err)
			}
			s.advisoryErr("post", "counter", s.counts.Decrement(row.UserID))
		}
		return p, nil
	}

	row, err := s.reader.GetPost(tgt)
	if err != nil {
		return models.Post{}, mapErr(err)
	}
	if err := s.writer.DeletePost(row).FirstErr(); err != nil {
		return models.Post{}, err
	}
	if _, err := s.writer.DeleteComments(tgt); err != nil {
		return models.Post{}, err
	}
	if err := s.counts.Decrement(row.UserID); err != nil {
		return models.Post{}, err
	}
	return postModel(row), nil
}
