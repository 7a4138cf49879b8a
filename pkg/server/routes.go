package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	apmcp "awspanel/internal/mcp"
)

const sessionCookie = "chat_session_id"

func (rt *runtime) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", rt.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/mcp/tools", rt.handleListTools).Methods(http.MethodGet)
	r.HandleFunc("/mcp/categories", rt.handleCategories).Methods(http.MethodGet)
	r.HandleFunc("/mcp/call/{tool}", rt.handleCallTool).Methods(http.MethodPost)
	r.HandleFunc("/chat/send_message", rt.handleSendMessage).Methods(http.MethodPost)
	r.HandleFunc("/chat/clear_history", rt.handleClearHistory).Methods(http.MethodPost)
	r.HandleFunc("/chat/session", rt.handleSession).Methods(http.MethodGet)
	r.HandleFunc("/chat/settings", rt.handleGetSettings).Methods(http.MethodGet)
	r.HandleFunc("/chat/settings", rt.handleSetSettings).Methods(http.MethodPost)
	return r
}

func (rt *runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "tools": rt.registry.Count()})
}

func (rt *runtime) handleListTools(w http.ResponseWriter, _ *http.Request) {
	out := map[string]any{}
	for _, tool := range rt.registry.List() {
		out[tool.Name] = map[string]any{
			"description": tool.Description,
			"parameters":  tool.Parameters,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *runtime) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.registry.Categories())
}

func (rt *runtime) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["tool"]
	args := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}

	if spec, ok := rt.registry.Lookup(name); ok {
		if missing := missingParams(spec, args); len(missing) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": fmt.Sprintf("Missing required parameters: %s", pythonList(missing)),
			})
			return
		}
	}

	call := rt.dispatcher.Execute(r.Context(), name, args)
	if call.Err != nil {
		status := http.StatusInternalServerError
		if errors.Is(call.Err, apmcp.ErrToolNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, call.Result)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": call.Result})
}

func (rt *runtime) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "message is required", "status": "error"})
		return
	}
	sessionID := rt.sessionID(w, r)

	reply, err := rt.orchestrator.HandleMessage(r.Context(), sessionID, body.Message)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "status": "error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"response":     reply.Text,
		"tool_results": reply.ToolResults,
		"status":       "success",
	})
}

func (rt *runtime) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		rt.store.Clear(cookie.Value)
	}
	fresh := rt.store.NewSessionID()
	setSessionCookie(w, fresh)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "session_id": fresh})
}

func (rt *runtime) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"session_id": rt.sessionID(w, r)})
}

func (rt *runtime) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	sessionID := rt.sessionID(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"provider": rt.orchestrator.ProviderName(sessionID)})
}

func (rt *runtime) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Provider == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "provider is required"})
		return
	}
	sessionID := rt.sessionID(w, r)
	if err := rt.orchestrator.SetProvider(sessionID, body.Provider); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "provider": body.Provider})
}

func (rt *runtime) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := rt.store.NewSessionID()
	setSessionCookie(w, id)
	return id
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})
}

func missingParams(spec apmcp.ToolSpec, args map[string]any) []string {
	var missing []string
	for _, name := range spec.Parameters.RequiredNames() {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// pythonList renders names as ['a', 'b'], the format the panel frontend
// already parses.
func pythonList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, "'"+name+"'")
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
