// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/config"
	"github.com/quillon/docchat/internal/docs"
	"github.com/quillon/docchat/internal/flow"
	"github.com/quillon/docchat/internal/grader"
	"github.com/quillon/docchat/internal/index"
	"github.com/quillon/docchat/internal/llm"
	"github.com/quillon/docchat/internal/session"
)

// Server wires the document index, conversation flows, grader, and session
// history behind an HTTP API.
type Server struct {
	router    chi.Router
	cfg       config.Config
	provider  llm.Provider
	processor *docs.Processor
	index     *index.Store
	flows     *flow.Store
	engine    *flow.Engine
	grader    *grader.Grader
	templates *grader.TemplateStore
	sessions  *session.Store

	apiCfg Config
}

// Config controls request-level behavior of the API server.
type Config struct {
	// TopK is the default number of context blocks retrieved per query.
	TopK int
	// HistoryLimit bounds how many prior messages are replayed into a chat
	// completion. Zero means the full history.
	HistoryLimit int
	// BaseSystemPrompt seeds sessions that are not bound to a flow.
	BaseSystemPrompt string
}

// DefaultConfig returns the standard configuration used when no overrides
// are provided.
func DefaultConfig() Config {
	return Config{
		TopK:         5,
		HistoryLimit: 20,
		BaseSystemPrompt: "You are a helpful assistant that answers questions using the supplied " +
			"document context when it is present. If the context does not cover the question, " +
			"say so before answering from general knowledge.",
	}
}

// Merge overlays non-zero configuration values from the override onto the
// base configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if override.TopK > 0 {
		result.TopK = override.TopK
	}
	if override.HistoryLimit > 0 {
		result.HistoryLimit = override.HistoryLimit
	}
	if override.BaseSystemPrompt != "" {
		result.BaseSystemPrompt = override.BaseSystemPrompt
	}
	return result
}

// Deps carries the constructed stores and services the server routes to.
type Deps struct {
	Provider  llm.Provider
	Processor *docs.Processor
	Index     *index.Store
	Flows     *flow.Store
	Engine    *flow.Engine
	Grader    *grader.Grader
	Templates *grader.TemplateStore
	Sessions  *session.Store
}

func NewServer(cfg config.Config, deps Deps, apiCfg *Config) (*Server, error) {
	logger := common.Logger()
	if deps.Provider == nil {
		return nil, fmt.Errorf("provider required")
	}
	if deps.Index == nil {
		return nil, fmt.Errorf("index store required")
	}
	if deps.Flows == nil {
		return nil, fmt.Errorf("flow store required")
	}
	configuration := DefaultConfig()
	if apiCfg != nil {
		configuration = configuration.Merge(*apiCfg)
	}
	engine := deps.Engine
	if engine == nil {
		engine = flow.NewEngine(flow.NewLLMJudge(deps.Provider))
	}
	srv := &Server{
		router:    chi.NewRouter(),
		cfg:       cfg,
		provider:  deps.Provider,
		processor: deps.Processor,
		index:     deps.Index,
		flows:     deps.Flows,
		engine:    engine,
		grader:    deps.Grader,
		templates: deps.Templates,
		sessions:  deps.Sessions,
		apiCfg:    configuration,
	}
	srv.routes()
	logger.Info("api: server ready", "provider", deps.Provider.Name())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/index", s.handleIndex)
	s.router.Get("/v1/index/stats", s.handleIndexStats)
	s.router.Get("/v1/search", s.handleSearch)
	s.router.Post("/v1/chat", s.handleChat)
	s.router.Post("/v1/sessions", s.handleSessionCreate)
	s.router.Get("/v1/flows", s.handleFlowList)
	s.router.Get("/v1/flows/{flowID}", s.handleFlowGet)
	s.router.Post("/v1/flows", s.handleFlowSave)
	s.router.Post("/v1/grade", s.handleGrade)
	s.router.Get("/v1/grade/templates", s.handleGradeTemplates)
	s.router.Get("/v1/logs", s.handleLogs)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
