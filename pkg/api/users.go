package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"shiftdb/pkg/blog"
	"shiftdb/pkg/utils"
)

type userPayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var p userPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	var name, email string
	if p.Name != nil {
		name = *p.Name
	}
	if p.Email != nil {
		email = *p.Email
	}
	u, err := s.svc.CreateUser(name, email)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, ok(u))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, prov, err := s.svc.ListUsers()
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, okList(users, len(users), "", string(prov)))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, prov, err := s.svc.GetUser(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	env := ok(u)
	env.Source = string(prov)
	_ = utils.JSONWrite(w, http.StatusOK, env)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var p userPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := s.svc.UpdateUser(mux.Vars(r)["id"], blog.UserUpdate{Name: p.Name, Email: p.Email})
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(u))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.DeleteUser(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(u))
}
