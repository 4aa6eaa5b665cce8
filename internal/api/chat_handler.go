// File path: internal/api/chat_handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/flow"
	"github.com/quillon/docchat/internal/index"
	"github.com/quillon/docchat/internal/llm"
	"github.com/quillon/docchat/internal/session"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("message required"))
		return
	}
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("session store unavailable"))
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	flowID := strings.TrimSpace(req.FlowID)
	if sessionID == "" {
		created, err := s.sessions.Create(ctx, flowID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		sessionID = created
		logger.Info("api: started chat session", "session", sessionID, "flow", flowID)
	} else {
		bound, err := s.sessions.FlowID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		flowID = bound
	}

	systemPrompt := s.apiCfg.BaseSystemPrompt
	stageID := ""
	if flowID != "" {
		prompt, stage, err := s.runFlowTurn(ctx, sessionID, flowID, req.Message)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if prompt != "" {
			systemPrompt = prompt
		}
		stageID = stage
	}

	messages := []llm.Message{{Role: "system", Content: systemPrompt}}
	if req.UseContext {
		topK := req.TopK
		if topK <= 0 {
			topK = s.apiCfg.TopK
		}
		contextBlock, err := s.index.Search(ctx, req.Message, topK, true)
		if err != nil {
			if !errors.Is(err, index.ErrNoIndex) {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			logger.Debug("api: chat requested context but index is empty")
		} else if contextBlock != "" {
			messages = append(messages, llm.Message{
				Role:    "system",
				Content: "Relevant document context:\n\n" + contextBlock,
			})
		}
	}
	history, err := s.sessions.History(ctx, sessionID, s.apiCfg.HistoryLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	answer, err := s.provider.Chat(ctx, llm.ChatRequest{
		Model:       s.cfg.ChatModel,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.sessions.AppendMessage(ctx, sessionID, "user", req.Message); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.sessions.AppendMessage(ctx, sessionID, "assistant", answer); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: chat completion succeeded", "session", sessionID, "stage", stageID, "provider", s.provider.Name())
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Answer:    answer,
		Stage:     stageID,
		Provider:  s.provider.Name(),
	})
}

// runFlowTurn advances the session's conversation flow by one user turn and
// returns the system prompt for the stage the conversation is now in.
func (s *Server) runFlowTurn(ctx context.Context, sessionID, flowID, message string) (string, string, error) {
	f, err := s.flows.Load(flowID)
	if err != nil {
		return "", "", err
	}
	state, err := s.sessions.LoadState(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			return "", "", err
		}
		state = flow.NewState(f)
	}
	prompt, err := s.engine.ProcessTurn(ctx, message, state, f)
	if err != nil {
		return "", "", err
	}
	if err := s.sessions.SaveState(ctx, sessionID, state); err != nil {
		return "", "", err
	}
	return prompt, state.CurrentStageID, nil
}
