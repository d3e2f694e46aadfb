package api

import (
	"net/http"

	"shiftdb/pkg/utils"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats()
	if err != nil {
		utils.JSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"phase":  st.Phase,
		"stats":  st,
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats()
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(st))
}

func (s *Server) runBackfill(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		utils.JSONError(w, http.StatusConflict, "source store is detached")
		return
	}
	rep, err := s.engine.Run(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(rep))
}

func (s *Server) runVerify(w http.ResponseWriter, r *http.Request) {
	if s.verifier == nil {
		utils.JSONError(w, http.StatusConflict, "source store is detached")
		return
	}
	rep, err := s.verifier.Run()
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ok(rep))
}
