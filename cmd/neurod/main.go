package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"neurod/internal/common/fsutil"
	"neurod/internal/config"
	"neurod/internal/embed"
	"neurod/internal/httpapi"
	"neurod/internal/manager"
	"neurod/internal/notes"
	"neurod/internal/registry"
	"neurod/pkg/types"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("NEUROD_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	cfgPath := flag.String("config", "", "Optional config file (.yaml/.json/.toml)")
	endpointsDir := flag.String("endpoints-dir", "~/sessions/neurod", "Directory to scan for *.onnx session files")
	memBudgetMB := flag.Int("mem-budget-mb", 0, "Memory budget in MB for all instances (0=unlimited)")
	memMarginMB := flag.Int("mem-margin-mb", 0, "Reserved memory margin in MB to keep free")
	defaultEndpoint := flag.String("default-endpoint", "synthetic", "Default endpoint id when request omits endpoint")
	stepTimeoutSec := flag.Int("step-timeout-sec", 0, "Per-step endpoint call timeout in seconds (0=package default)")
	maxWaitSec := flag.Int("max-wait-sec", 0, "Queue admission timeout in seconds (0=package default)")
	notesSnapshot := flag.String("notes-snapshot", "", "Path to the notes snapshot file (empty disables persistence)")
	embeddingURL := flag.String("embedding-url", os.Getenv("NEUROD_EMBEDDING_URL"), "Base URL of the OpenAI-compatible embeddings API")
	embeddingKey := flag.String("embedding-key", os.Getenv("NEUROD_EMBEDDING_KEY"), "Bearer key for the embeddings API")
	embeddingModel := flag.String("embedding-model", "nomic-embed-text", "Embedding model name")
	queryTTLSec := flag.Int("query-ttl-sec", 60, "Search query embedding cache TTL in seconds (0 disables)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	maxBodyBytes := flag.Int64("max-body-bytes", 0, "Maximum JSON request body size in bytes (0=default 1MiB)")
	generateTimeoutSec := flag.Int64("generate-timeout-sec", 0, "Overall /generate request timeout in seconds (0 disables)")
	flag.Parse()

	if *cfgPath != "" {
		fileCfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		applyFileConfig(fileCfg, addr, endpointsDir, memBudgetMB, memMarginMB,
			defaultEndpoint, stepTimeoutSec, maxWaitSec, notesSnapshot,
			embeddingURL, embeddingKey, embeddingModel, queryTTLSec)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	httpapi.SetLogger(logger)
	if origins := splitCSV(*corsOrigins); len(origins) > 0 {
		httpapi.SetCORSOptions(true, origins, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	}
	httpapi.SetMaxBodyBytes(*maxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(*generateTimeoutSec)

	eps, err := loadEndpoints(*endpointsDir)
	if err != nil {
		log.Fatalf("failed to load endpoints: %v", err)
	}

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:        eps,
		BudgetMB:        *memBudgetMB,
		MarginMB:        *memMarginMB,
		DefaultEndpoint: *defaultEndpoint,
		StepTimeout:     time.Duration(*stepTimeoutSec) * time.Second,
		MaxWait:         time.Duration(*maxWaitSec) * time.Second,
	})

	// Notes storage needs a live embedding service; without one the notes
	// routes report unavailable.
	var ns httpapi.NotesService
	var store *notes.Store
	if *embeddingURL != "" {
		client := embed.NewClient(*embeddingURL, *embeddingKey, *embeddingModel)
		store = notes.NewStore(client, time.Duration(*queryTTLSec)*time.Second)
		if *notesSnapshot != "" && fsutil.PathExists(*notesSnapshot) {
			if err := store.Load(*notesSnapshot, client.Model()); err != nil {
				log.Printf("notes snapshot load failed: %v", err)
			}
		}
		ns = notes.NewService(store)
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(mgr, ns)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", *addr).Str("endpoints_dir", *endpointsDir).Msg("neurod listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	baseCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	if store != nil {
		if *notesSnapshot != "" {
			if err := store.Save(*notesSnapshot, *embeddingModel); err != nil {
				log.Printf("notes snapshot save failed: %v", err)
			}
		}
		store.Close()
	}
}

// loadEndpoints resolves dir (with ~ expansion) and scans it for session
// files. A missing directory is not an error; the synthetic endpoint is
// always present.
func loadEndpoints(dir string) ([]types.Endpoint, error) {
	resolved, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if !fsutil.PathExists(resolved) {
		return registry.WithSynthetic(nil), nil
	}
	scanned, err := registry.LoadDir(resolved)
	if err != nil {
		return nil, err
	}
	return registry.WithSynthetic(scanned), nil
}

// applyFileConfig fills in values the command line left at defaults.
func applyFileConfig(fileCfg config.Config, addr, endpointsDir *string, memBudgetMB, memMarginMB *int,
	defaultEndpoint *string, stepTimeoutSec, maxWaitSec *int, notesSnapshot, embeddingURL, embeddingKey, embeddingModel *string, queryTTLSec *int) {
	if fileCfg.Addr != "" {
		*addr = fileCfg.Addr
	}
	if fileCfg.EndpointsDir != "" {
		*endpointsDir = fileCfg.EndpointsDir
	}
	if fileCfg.MemBudgetMB > 0 {
		*memBudgetMB = fileCfg.MemBudgetMB
	}
	if fileCfg.MemMarginMB > 0 {
		*memMarginMB = fileCfg.MemMarginMB
	}
	if fileCfg.DefaultEndpoint != "" {
		*defaultEndpoint = fileCfg.DefaultEndpoint
	}
	if fileCfg.StepTimeoutSec > 0 {
		*stepTimeoutSec = fileCfg.StepTimeoutSec
	}
	if fileCfg.MaxWaitSec > 0 {
		*maxWaitSec = fileCfg.MaxWaitSec
	}
	if fileCfg.NotesSnapshot != "" {
		*notesSnapshot = fileCfg.NotesSnapshot
	}
	if fileCfg.EmbeddingURL != "" {
		*embeddingURL = fileCfg.EmbeddingURL
	}
	if fileCfg.EmbeddingKey != "" {
		*embeddingKey = fileCfg.EmbeddingKey
	}
	if fileCfg.EmbeddingModel != "" {
		*embeddingModel = fileCfg.EmbeddingModel
	}
	if fileCfg.QueryCacheTTLSec > 0 {
		*queryTTLSec = fileCfg.QueryCacheTTLSec
	}
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty items.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
