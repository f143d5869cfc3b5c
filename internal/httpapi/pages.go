package httpapi

import (
	"embed"
	"net/http"
	"strings"
)

//go:embed web/marketplace.html web/agent.html
var webFS embed.FS

// handleMarketplacePage serves the catalog page at GET /agents.
func (a *App) handleMarketplacePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	page, err := webFS.ReadFile("web/marketplace.html")
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// handleAgentPage serves GET /agent/{name}: the detail page template
// with {{agent_name}} substituted.
func (a *App) handleAgentPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/agent/"), "/")
	if name == "" {
		http.Redirect(w, r, "/agents", http.StatusFound)
		return
	}
	page, err := webFS.ReadFile("web/agent.html")
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := strings.ReplaceAll(string(page), "{{agent_name}}", htmlEscape(name))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func htmlEscape(s string) string { return htmlEscaper.Replace(s) }
