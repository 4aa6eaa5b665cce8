// File path: internal/api/grade_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/grader"
)

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	if s.grader == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("grader unavailable"))
		return
	}
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	greq := grader.Request{
		Response:        req.Response,
		Context:         req.Context,
		ReferenceAnswer: req.ReferenceAnswer,
	}
	if tpl := strings.TrimSpace(req.Template); tpl != "" {
		if s.templates == nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("template store unavailable"))
			return
		}
		all, err := s.templates.LoadAll()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		template, ok := all[tpl]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("grading template %q not found", tpl))
			return
		}
		greq.Criteria = template.Criteria
		if greq.ReferenceAnswer == "" {
			greq.ReferenceAnswer = template.ReferenceAnswer
		}
		if greq.Context == "" {
			greq.Context = template.Context
		}
	}
	if len(greq.Criteria) == 0 {
		greq.Criteria = grader.BuildCriteria(req.Subject, req.Difficulty, req.Criteria)
	}

	result, err := s.grader.Grade(ctx, greq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: graded response", "score", result.Score, "template", req.Template)
	writeJSON(w, http.StatusOK, gradeResponse{Result: result})
}

func (s *Server) handleGradeTemplates(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("template store unavailable"))
		return
	}
	all, err := s.templates.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": all})
}
