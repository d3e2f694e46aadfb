package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"shiftdb/pkg/utils"
)

type commentPayload struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var p commentPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	c, err := s.svc.CreateComment(mux.Vars(r)["id"], p.UserID, p.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, ok(c))
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	comments, prov, err := s.svc.ListComments(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, okList(comments, len(comments), "", string(prov)))
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	c, err := s.svc.DeleteComment(vars["id"], vars["commentID"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(c))
}
