package httpapi

import (
	"encoding/json"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/vigneshgurumohan/agents-store/internal/objstore"
	"github.com/vigneshgurumohan/agents-store/internal/otel"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// handleUpload serves POST /api/uploads/{folder}: a multipart upload
// routed to the object store. When the form names an agent_id and the
// folder is demo_assets, a demo asset row is recorded alongside the
// object.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	folder := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/uploads/"), "/")
	if err := objstore.ValidateFolder(folder); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !a.Objects.Enabled() {
		writeJSONError(w, http.StatusServiceUnavailable, "object storage not configured")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "multipart field \"file\" required")
		return
	}
	defer file.Close()

	if err := objstore.ValidateFile(header.Filename, header.Size); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(path.Ext(header.Filename)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := objstore.ObjectKey(folder, r.FormValue("user"), header.Filename)
	url, err := a.Objects.Put(r.Context(), key, file, header.Size, contentType)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	otel.RecordUpload(r.Context(), folder)

	if agentID := r.FormValue("agent_id"); agentID != "" && folder == "demo_assets" {
		a.recordDemoAsset(r, agentID, url, header.Filename)
	}

	writeJSONStatus(w, http.StatusCreated, models.UploadResult{
		URL:      url,
		Key:      key,
		Size:     header.Size,
		Filename: header.Filename,
	})
}

// recordDemoAsset links an uploaded object to an agent as a demo asset.
// Best effort; the upload already succeeded.
func (a *App) recordDemoAsset(r *http.Request, agentID, url, filename string) {
	id, err := a.Store.NextID(r.Context(), "demo_assets")
	if err != nil {
		return
	}
	_ = a.Store.CreateDemoAssets(r.Context(), []models.DemoAsset{{
		DemoAssetID: id,
		AgentID:     agentID,
		AssetType:   assetTypeFor(filename),
		AssetURL:    url,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}})
	a.Hub.Publish(Event{Type: EventDemoAssetCreated, AgentID: agentID, DemoAssetID: id})
}

func assetTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp4", ".avi", ".mov":
		return "video"
	case ".png", ".jpg", ".jpeg", ".gif":
		return "image"
	default:
		return "document"
	}
}

// handleUploadDelete serves DELETE /api/uploads: removes an object by
// its public URL ({"url": ...} body or ?url= query).
func (a *App) handleUploadDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !a.Objects.Enabled() {
		writeJSONError(w, http.StatusServiceUnavailable, "object storage not configured")
		return
	}
	rawurl := r.URL.Query().Get("url")
	if rawurl == "" {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			rawurl = body.URL
		}
	}
	if rawurl == "" {
		writeJSONError(w, http.StatusBadRequest, "url required")
		return
	}
	key, err := a.Objects.KeyFromURL(rawurl)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.Objects.Delete(r.Context(), key); err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "key": key})
}

// handleUploadSign serves GET /api/uploads/sign?key=...: a time-limited
// presigned download URL for a stored object.
func (a *App) handleUploadSign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !a.Objects.Enabled() {
		writeJSONError(w, http.StatusServiceUnavailable, "object storage not configured")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSONError(w, http.StatusBadRequest, "key required")
		return
	}
	url, err := a.Objects.Presign(r.Context(), key)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, map[string]any{"url": url, "expires_in": int(objstore.PresignExpiry.Seconds())})
}
