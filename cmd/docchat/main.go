// File path: cmd/docchat/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quillon/docchat/internal/api"
	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/config"
	"github.com/quillon/docchat/internal/docs"
	"github.com/quillon/docchat/internal/flow"
	"github.com/quillon/docchat/internal/grader"
	"github.com/quillon/docchat/internal/index"
	"github.com/quillon/docchat/internal/llm"
	"github.com/quillon/docchat/internal/session"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("docchat: .env file not loaded", "error", err)
	} else {
		logger.Info("docchat: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "docchat.json", "path to the configuration file")
	indexPath := flag.String("index", "", "override path of the document index")
	flowsDir := flag.String("flows", "", "override directory holding conversation flow definitions")
	topK := flag.Int("top-k", 0, "default number of context blocks per query")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("docchat: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*indexPath); trimmed != "" {
		cfg.IndexPath = trimmed
	}
	if trimmed := strings.TrimSpace(*flowsDir); trimmed != "" {
		cfg.FlowsDir = trimmed
	}
	logger.Info("docchat: startup initiated", "addr", *addr, "index", cfg.IndexPath, "flows", cfg.FlowsDir)

	provider := llm.NewProvider(cfg.ChatModel, cfg.EmbedModel)
	logger.Info("docchat: llm provider ready", "provider", provider.Name())

	processor := docs.NewProcessor(provider, docs.Options{
		MinSummaryLen: cfg.MinSummaryLen,
		MinKeywordLen: cfg.MinKeywordLen,
		ChunkSizes:    cfg.ChunkSizes,
		Overlaps:      cfg.Overlaps,
	})
	store := index.New(cfg.IndexPath, cfg.SummaryPath, provider, cfg.EmbedBatchSize)
	if loaded, err := store.Load(); err != nil {
		logger.Warn("docchat: index load failed", "path", cfg.IndexPath, "error", err)
	} else if loaded {
		logger.Info("docchat: index restored", "path", cfg.IndexPath)
	}

	flows, err := flow.NewStore(cfg.FlowsDir)
	if err != nil {
		logger.Error("docchat: flow store init failed", "error", err)
		fmt.Println("flow store error:", err)
		os.Exit(1)
	}
	if err := flows.SeedDefaults(); err != nil {
		logger.Warn("docchat: seeding default flows failed", "error", err)
	}

	templates, err := grader.NewTemplateStore(cfg.TemplatesDir)
	if err != nil {
		logger.Error("docchat: template store init failed", "error", err)
		fmt.Println("template store error:", err)
		os.Exit(1)
	}

	sessions, err := session.Open(cfg.SessionDB)
	if err != nil {
		logger.Error("docchat: session store init failed", "error", err)
		fmt.Println("session store error:", err)
		os.Exit(1)
	}
	defer sessions.Close()

	apiCfg := api.DefaultConfig()
	if *topK > 0 {
		apiCfg.TopK = *topK
	}
	server, err := api.NewServer(cfg, api.Deps{
		Provider:  provider,
		Processor: processor,
		Index:     store,
		Flows:     flows,
		Engine:    flow.NewEngine(flow.NewLLMJudge(provider)),
		Grader:    grader.New(provider),
		Templates: templates,
		Sessions:  sessions,
	}, &apiCfg)
	if err != nil {
		logger.Error("docchat: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	httpServer := &http.Server{Addr: *addr, Handler: server}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("docchat: server listening", "addr", *addr, "health", "/healthz")
		fmt.Printf("Serving on %s\n", *addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("docchat: shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("docchat: shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("docchat: server stopped", "error", err)
			fmt.Println("server stopped:", err)
		}
	}
}
