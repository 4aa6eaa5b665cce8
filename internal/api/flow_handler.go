// File path: internal/api/flow_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/flow"
)

func (s *Server) handleFlowList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.flows.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, flowListResponse{Flows: infos})
}

func (s *Server) handleFlowGet(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	f, err := s.flows.Load(flowID)
	if err != nil {
		if errors.Is(err, flow.ErrFlowNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleFlowSave(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var f flow.Flow
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(f.FlowID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("flow_id required"))
		return
	}
	warnings := flow.Validate(&f)
	if err := s.flows.Save(&f); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: flow saved", "flow", f.FlowID, "stages", len(f.Stages), "warnings", len(warnings))
	writeJSON(w, http.StatusOK, flowSaveResponse{FlowID: f.FlowID, Warnings: warnings})
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req sessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("session store unavailable"))
		return
	}
	flowID := strings.TrimSpace(req.FlowID)
	stage := ""
	if flowID != "" {
		f, err := s.flows.Load(flowID)
		if err != nil {
			if errors.Is(err, flow.ErrFlowNotFound) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		stage = f.InitialStage
		sessionID, err := s.sessions.Create(ctx, flowID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if err := s.sessions.SaveState(ctx, sessionID, flow.NewState(f)); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: sessionID, FlowID: flowID, Stage: stage})
		return
	}
	sessionID, err := s.sessions.Create(ctx, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sessionID})
}
