// File path: internal/api/types.go
package api

import (
	"github.com/quillon/docchat/internal/flow"
	"github.com/quillon/docchat/internal/grader"
)

type indexRequest struct {
	Directory string `json:"directory"`
}

type indexResponse struct {
	Indexed   int      `json:"indexed"`
	Documents int      `json:"documents"`
	Skipped   []string `json:"skipped,omitempty"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Context string `json:"context"`
}

type chatRequest struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	FlowID     string `json:"flow_id"`
	UseContext bool   `json:"use_context"`
	TopK       int    `json:"top_k"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Stage     string `json:"stage,omitempty"`
	Provider  string `json:"provider"`
}

type sessionRequest struct {
	FlowID string `json:"flow_id"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	FlowID    string `json:"flow_id,omitempty"`
	Stage     string `json:"stage,omitempty"`
}

type flowSaveResponse struct {
	FlowID   string   `json:"flow_id"`
	Warnings []string `json:"warnings,omitempty"`
}

type flowListResponse struct {
	Flows []flow.FlowInfo `json:"flows"`
}

type gradeRequest struct {
	Response        string            `json:"response"`
	Context         string            `json:"context"`
	ReferenceAnswer string            `json:"reference_answer"`
	Subject         string            `json:"subject"`
	Difficulty      string            `json:"difficulty"`
	Criteria        map[string]string `json:"criteria"`
	Template        string            `json:"template"`
}

type gradeResponse struct {
	Result *grader.Result `json:"result"`
}
