package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vigneshgurumohan/agents-store/internal/capabilities"
	"github.com/vigneshgurumohan/agents-store/internal/chat"
	"github.com/vigneshgurumohan/agents-store/internal/config"
	"github.com/vigneshgurumohan/agents-store/internal/docgen"
	"github.com/vigneshgurumohan/agents-store/internal/llm"
	"github.com/vigneshgurumohan/agents-store/internal/objstore"
	"github.com/vigneshgurumohan/agents-store/internal/otel"
	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/internal/store/csvstore"
	"github.com/vigneshgurumohan/agents-store/internal/store/postgres"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// defaultMaxRequestBodyBytes is the default limit for request body size (1 MiB) to prevent OOM.
const defaultMaxRequestBodyBytes = 1 << 20

// uploadMaxRequestBodyBytes bounds multipart upload requests: the
// object-size cap plus headroom for multipart framing.
const uploadMaxRequestBodyBytes = objstore.MaxUploadSize + defaultMaxRequestBodyBytes

// limitBody wraps r.Body with http.MaxBytesReader so handlers cannot read more than maxBytes.
// Call this for requests that have a body (e.g. POST, PUT, PATCH) before decoding JSON.
func limitBody(w http.ResponseWriter, r *http.Request, maxBytes int64) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
}

// bodyLimitMiddleware limits request body size for POST, PUT, PATCH to prevent OOM.
// Upload routes get the larger multipart budget.
func bodyLimitMiddleware(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			limit := maxBytes
			if strings.HasPrefix(r.URL.Path, "/api/uploads") {
				limit = uploadMaxRequestBodyBytes
			}
			limitBody(w, r, limit)
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware sets CORS headers for dev mode (frontend served from a different origin).
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServerOptions configures the HTTP server (home dir, listen addr, API key, data source, metrics).
type ServerOptions struct {
	Home           string
	Addr           string
	Dev            bool
	APIKey         string       // if set, require X-API-Key header or query api_key
	DataSource     string       // "csv" (default) or "postgres"
	DatabaseURL    string       // for postgres: connection string (or set DATABASE_URL env)
	MetricsHandler http.Handler // if set, used for /metrics (e.g. OTel Prometheus handler)
	UseOtelHTTP    bool         // if true, wrap handler with otelhttp for request metrics
}

// App holds the HTTP server, SSE hub, store, chat service, document
// generator, object store, capabilities registry, and home path.
type App struct {
	Server       *http.Server
	Hub          *SSEHub
	Store        store.Store
	Chat         *chat.Service
	Docs         *docgen.Generator
	Objects      *objstore.Store
	Capabilities *capabilities.Registry // optional; loaded from env (e.g. SLACK_WEBHOOK_URL)
	Home         string
}

// NewServer builds an HTTP server from options; kept for backward compatibility (prefer NewApp).
func NewServer(opts ServerOptions) *http.Server {
	app, err := NewApp(opts)
	if err != nil {
		panic(err)
	}
	return app.Server
}

// NewApp creates the HTTP app (server, hub, store, chat, docgen, object store)
// and registers all routes.
func NewApp(opts ServerOptions) (*App, error) {
	hub := NewSSEHub()
	mux := http.NewServeMux()
	cfg := config.FromEnv()

	var st store.Store
	var err error
	if opts.DataSource == "postgres" {
		st, err = postgres.Open(opts.DatabaseURL)
	} else {
		st, err = csvstore.Open(config.DataDir(opts.Home))
	}
	if err != nil {
		return nil, err
	}
	_ = st.SeedDemo(context.Background())

	objects, err := objstore.New(cfg.S3)
	if err != nil {
		slog.Warn("object store disabled", "err", err)
		objects = nil
	}

	llmClient := llm.New(cfg.LLM)
	docs := docgen.New(st, config.DocumentsDir(opts.Home), llmClient)
	docs.OnReady = func(requirementID, path string) {
		hub.Publish(Event{Type: EventDocumentReady, RequirementID: requirementID, Path: path})
		otel.RecordDocumentGenerated(context.Background())
	}

	reg := capabilities.NewRegistry()
	if u := os.Getenv("SLACK_WEBHOOK_URL"); u != "" {
		reg.Register("slack", capabilities.SlackWebhook{WebhookURL: u})
	}
	if u := os.Getenv("TEAMS_WEBHOOK_URL"); u != "" {
		reg.Register("teams", capabilities.TeamsWebhook{WebhookURL: u})
	}

	chatSvc := chat.NewService(st, llmClient)
	chatSvc.OnRequirementSaved = func(requirementID string) {
		docs.Enqueue(requirementID)
		hub.Publish(Event{Type: EventRequirementSaved, RequirementID: requirementID})
	}

	app := &App{
		Hub:          hub,
		Store:        st,
		Chat:         chatSvc,
		Docs:         docs,
		Objects:      objects,
		Capabilities: reg,
		Home:         opts.Home,
	}

	mux.HandleFunc("/api/health", app.handleHealth)

	if opts.MetricsHandler != nil {
		mux.Handle("/metrics", opts.MetricsHandler)
	} else {
		mux.HandleFunc("/metrics", app.handleMetricsFallback)
	}

	// Catalog
	mux.HandleFunc("/api/agents", app.handleAgents)
	mux.HandleFunc("/api/agents/", app.handleAgentByID)
	mux.HandleFunc("/api/capabilities", app.handleCapabilities)

	// Directory
	mux.HandleFunc("/api/isvs", app.handleISVs)
	mux.HandleFunc("/api/isvs/", app.handleISVByID)
	mux.HandleFunc("/api/resellers", app.handleResellers)
	mux.HandleFunc("/api/resellers/", app.handleResellerByID)
	mux.HandleFunc("/api/clients", app.handleClients)
	mux.HandleFunc("/api/clients/", app.handleClientByID)

	// Auth
	mux.HandleFunc("/api/auth/login", app.handleLogin)
	mux.HandleFunc("/api/auth/register", app.handleRegister)
	mux.HandleFunc("/api/auth/users/", app.handleUserByEmail)

	// Enquiries
	mux.HandleFunc("/api/enquiries", app.handleEnquiries)

	// Uploads
	mux.HandleFunc("/api/uploads", app.handleUploadDelete)
	mux.HandleFunc("/api/uploads/sign", app.handleUploadSign)
	mux.HandleFunc("/api/uploads/", app.handleUpload)

	// Chat and requirements
	mux.HandleFunc("/api/chat", app.handleChat)
	mux.HandleFunc("/api/chat/clear", app.handleChatClear)
	mux.HandleFunc("/api/chat/history/", app.handleChatHistory)
	mux.HandleFunc("/api/requirements", app.handleRequirements)
	mux.HandleFunc("/api/requirements/", app.handleRequirementByID)

	// SSE
	mux.HandleFunc("/events", hub.Handler())

	// Frontend pages
	mux.HandleFunc("/agents", app.handleMarketplacePage)
	mux.HandleFunc("/agent/", app.handleAgentPage)

	var handler http.Handler = mux
	handler = bodyLimitMiddleware(defaultMaxRequestBodyBytes, handler)
	if opts.Dev {
		handler = corsMiddleware(handler)
	}
	if opts.APIKey != "" {
		handler = apiKeyMiddleware(opts.APIKey, handler)
	}
	handler = requestLogMiddleware(handler)
	if opts.UseOtelHTTP {
		handler = otelhttp.NewHandler(handler, "agents-store")
	}
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv.RegisterOnShutdown(func() {
		_ = st.Close()
	})
	app.Server = srv
	return app, nil
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h := a.Store.Health(r.Context())
	if h.Status == "unhealthy" {
		writeJSONStatus(w, http.StatusServiceUnavailable, h)
		return
	}
	writeJSON(w, h)
}

// handleMetricsFallback serves a minimal text exposition when no OTel
// Prometheus handler is configured.
func (a *App) handleMetricsFallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	agents, _ := a.Store.ListAgents(r.Context())
	var approved, pending int
	for _, ag := range agents {
		if ag.AdminApproved == "yes" {
			approved++
		} else {
			pending++
		}
	}
	_, _ = w.Write([]byte(
		"agents_store_agents_total{status=\"approved\"} " + strconv.Itoa(approved) + "\n" +
			"agents_store_agents_total{status=\"pending\"} " + strconv.Itoa(pending) + "\n"))
}

// responseRecorder captures status code for logging and forwards Flusher if supported.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func apiKeyMiddleware(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api/health" || path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}
		if key != apiKey {
			writeJSONError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		slog.Info("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeJSONStatus is writeJSON with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeJSONError sends a JSON body {"error": "message"} with the given status code.
func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message})
}
