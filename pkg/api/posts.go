package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"shiftdb/pkg/blog"
	"shiftdb/pkg/utils"
)

// Content is a pointer so an absent field can be told apart from an empty
// post, which is legal and lands in the default content bucket.
type postPayload struct {
	UserID  string  `json:"user_id"`
	Content *string `json:"content"`
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var p postPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.Content == nil {
		utils.JSONError(w, http.StatusBadRequest, "content is required")
		return
	}
	post, err := s.svc.CreatePost(p.UserID, *p.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, ok(post))
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	sortBy := blog.NormalizeSort(r.URL.Query().Get("sort"))
	posts, prov, err := s.svc.ListPosts(sortBy)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, okList(posts, len(posts), sortBy, string(prov)))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	post, prov, err := s.svc.GetPost(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	env := ok(post)
	env.Source = string(prov)
	_ = utils.JSONWrite(w, http.StatusOK, env)
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var p postPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.Content == nil {
		utils.JSONError(w, http.StatusBadRequest, "content is required")
		return
	}
	post, err := s.svc.UpdatePost(mux.Vars(r)["id"], *p.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(post))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	post, err := s.svc.DeletePost(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(post))
}
