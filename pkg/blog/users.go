package blog

import (
	"errors"
	"fmt"

	"shiftdb/pkg/ids"
	"shiftdb/pkg/migrate"
	"shiftdb/pkg/models"
	"shiftdb/pkg/store"
	"shiftdb/pkg/views"
)

// UserUpdate carries the fields a user update may change; nil means leave
// the field alone.
type UserUpdate struct {
	Name  *string
	Email *string
}

// CreateUser registers a user and returns it with its issued external id.
// Email uniqueness is checked against the authoritative store only.
func (s *Service) CreateUser(name, email string) (models.User, error) {
	if name == "" || email == "" {
		return models.User{}, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	if s.Phase().WritesSource() {
		if _, found, err := s.src.FindUserByEmail(email); err != nil {
			return models.User{}, err
		} else if found {
			return models.User{}, fmt.Errorf("%w: email already exists", ErrDuplicateKey)
		}
		u := models.User{ID: ids.NewSourceID(), Name: name, Email: email}
		if err := s.src.InsertUser(u); err != nil {
			return models.User{}, err
		}
		if s.Phase().WritesTarget() {
			tgt, _ := ids.ToTargetID(u.ID)
			rep := s.writer.WriteUser(views.UserRow{ID: tgt, Name: name, Email: email})
			s.advisory("user", rep)
		}
		return u, nil
	}

	// Target-only: the by-email view is the uniqueness check now.
	if _, err := s.reader.GetUserByEmail(email); err == nil {
		return models.User{}, fmt.Errorf("%w: email already exists", ErrDuplicateKey)
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}
	srcID := ids.NewSourceID()
	tgt, _ := ids.ToTargetID(srcID)
	rep := s.writer.WriteUser(views.UserRow{ID: tgt, Name: name, Email: email})
	if err := rep.FirstErr(); err != nil {
		return models.User{}, err
	}
	return models.User{ID: srcID, Name: name, Email: email}, nil
}

// GetUser returns the user with its live post count, tagged with the store
// that answered.
func (s *Service) GetUser(id string) (models.User, migrate.Provenance, error) {
	tgt, err := ids.ToTargetID(id)
	if err != nil {
		return models.User{}, "", err
	}
	var out models.User
	prov, err := s.coord.Read(
		func() error {
			row, err := s.reader.GetUser(tgt)
			if err != nil {
				return err
			}
			n, err := s.counts.Read(row.ID)
			if err != nil {
				return err
			}
			out = userModel(row, n)
			return nil
		},
		func() error {
			u, err := s.src.GetUser(id)
			if err != nil {
				return err
			}
			n, err := s.src.CountPostsByUser(id)
			if err != nil {
				return err
			}
			u.PostsCount = n
			out = u
			return nil
		},
		retriable,
	)
	return out, prov, mapErr(err)
}

// ListUsers returns every user with post counts.
func (s *Service) ListUsers() ([]models.User, migrate.Provenance, error) {
	var out []models.User
	prov, err := s.coord.Read(
		func() error {
			rows, err := s.reader.ListUsers()
			if err != nil {
				return err
			}
			out = make([]models.User, 0, len(rows))
			for _, row := range rows {
				n, err := s.counts.Read(row.ID)
				if err != nil {
					return err
				}
				out = append(out, userModel(row, n))
			}
			return nil
		},
		func() error {
			users, err := s.src.ListUsers()
			if err != nil {
				return err
			}
			posts, err := s.src.ListPosts()
			if err != nil {
				return err
			}
			perOwner := make(map[string]int64, len(users))
			for _, p := range posts {
				perOwner[p.UserID]++
			}
			out = make([]models.User, 0, len(users))
			for _, u := range users {
				u.PostsCount = perOwner[u.ID]
				out = append(out, u)
			}
			return nil
		},
		retriable,
	)
	return out, prov, mapErr(err)
}

// UpdateUser applies a partial update. An email change moves the by-email
// view row: the old row is deleted and a new one inserted, since email is
// that view's key.
func (s *Service) UpdateUser(id string, upd UserUpdate) (models.User, error) {
	tgt, err := ids.ToTargetID(id)
	if err != nil {
		return models.User{}, err
	}

	if s.Phase().WritesSource() {
		old, err := s.src.GetUser(id)
		if err != nil {
			return models.User{}, mapErr(err)
		}
		u := old
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if err := s.src.UpdateUser(u); err != nil {
			return models.User{}, err
		}
		if s.Phase().WritesTarget() {
			if upd.Email != nil && old.Email != u.Email {
				s.advisoryErr("user", string(views.ByEmail), s.writer.DeleteEmailRow(old.Email))
			}
			rep := s.writer.WriteUser(views.UserRow{ID: tgt, Name: u.Name, Email: u.Email})
			s.advisory("user", rep)
		}
		return u, nil
	}

	old, err := s.reader.GetUser(tgt)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	row := old
	if upd.Name != nil {
		row.Name = *upd.Name
	}
	if upd.Email != nil {
		row.Email = *upd.Email
	}
	if upd.Email != nil && old.Email != row.Email {
		if err := s.writer.DeleteEmailRow(old.Email); err != nil {
			return models.User{}, err
		}
	}
	rep := s.writer.WriteUser(row)
	if err := rep.FirstErr(); err != nil {
		return models.User{}, err
	}
	return userModel(row, 0), nil
}

// DeleteUser removes the user and, in the source store, cascades to their
// posts. The canonical row is read first: the by-email view can only be
// deleted with the last known email.
func (s *Service) DeleteUser(id string) (models.User, error) {
	tgt, err := ids.ToTargetID(id)
	if err != nil {
		return models.User{}, err
	}

	if s.Phase().WritesSource() {
		u, err := s.src.GetUser(id)
		if err != nil {
			return models.User{}, mapErr(err)
		}
		if err := s.src.DeleteUser(id); err != nil {
			return models.User{}, err
		}
		if _, err := s.src.DeletePostsByUser(id); err != nil {
			return models.User{}, err
		}
		if s.Phase().WritesTarget() {
			rep := s.writer.DeleteUser(views.UserRow{ID: tgt, Name: u.Name, Email: u.Email})
			s.advisory("user", rep)
		}
		return u, nil
	}

	row, err := s.reader.GetUser(tgt)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	rep := s.writer.DeleteUser(row)
	if err := rep.FirstErr(); err != nil {
		return models.User{}, err
	}
	return userModel(row, 0), nil
}
