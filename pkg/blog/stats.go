package blog

// Stats summarizes both stores for the health and admin endpoints. Source
// counts are absent once the source store is detached.
type Stats struct {
	Phase       string `json:"phase"`
	TargetUsers int    `json:"target_users"`
	TargetPosts int    `json:"target_posts"`
	SourceUsers *int   `json:"source_users,omitempty"`
	SourcePosts *int   `json:"source_posts,omitempty"`
}

func (s *Service) Stats() (Stats, error) {
	st := Stats{Phase: s.Phase().String()}
	var err error
	if st.TargetUsers, err = s.reader.CountUsers(); err != nil {
		return st, err
	}
	if st.TargetPosts, err = s.reader.CountPosts(); err != nil {
		return st, err
	}
	if s.src != nil {
		su, err := s.src.CountUsers()
		if err != nil {
			return st, err
		}
		sp, err := s.src.CountPosts()
		if err != nil {
			return st, err
		}
		st.SourceUsers = &su
		st.SourcePosts = &sp
	}
	return st, nil
}
