package daemon

// StartOptions configures the server process (home, port, data source, metrics).
type StartOptions struct {
	Home        string
	Port        int
	Dev         bool
	PprofAddr   string
	DataSource  string // "csv" (default) or "postgres"
	DatabaseURL string // for postgres: connection string (or DATABASE_URL env)
	APIKey      string // if set, require X-API-Key (or AGENTS_STORE_API_KEY env)
	EnableOtel  bool   // enable OpenTelemetry metrics (Prometheus exporter + HTTP/SSE instrumentation)
}

// StatusInfo is the result of Status (running or not, PID, listen addr).
type StatusInfo struct {
	Running bool
	PID     int
	Addr    string
}
