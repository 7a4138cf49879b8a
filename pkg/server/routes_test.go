package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"awspanel/internal/chat"
	"awspanel/internal/config"
	apmcp "awspanel/internal/mcp"
)

type stubProvider struct {
	turn chat.ModelTurn
	err  error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Send(ctx context.Context, history []chat.Message, tools []apmcp.ToolInfo) (chat.ModelTurn, error) {
	if p.err != nil {
		return chat.ModelTurn{}, p.err
	}
	return p.turn, nil
}

func newTestRuntime(t *testing.T, provider chat.Provider) *runtime {
	t.Helper()
	cfg := config.DefaultConfig()
	reg := apmcp.NewRegistry(&cfg)
	specs := []apmcp.ToolSpec{
		{
			Name:       "echo_name",
			Safety:     apmcp.SafetyReadOnly,
			Parameters: apmcp.ParamSchema{"bucket_name": {Type: "string", Required: true}},
			Handler: func(ctx context.Context, req apmcp.ToolRequest) (apmcp.ToolResult, error) {
				return apmcp.ToolResult{Data: map[string]any{
					"success": true,
					"name":    apmcp.AsString(req.Arguments, "bucket_name"),
				}}, nil
			},
		},
	}
	if err := reg.Register("test", specs); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	dispatcher := apmcp.NewDispatcher(reg, apmcp.NewNormalizer(nil), apmcp.ToolContext{})
	store := chat.NewStore(cfg.Chat.HistoryPairs)
	orchestrator := chat.NewOrchestrator(chat.OrchestratorOptions{
		Providers:       map[string]chat.Provider{"stub": provider},
		DefaultProvider: "stub",
		Registry:        reg,
		Dispatcher:      dispatcher,
		Store:           store,
		MaxToolRounds:   cfg.Chat.MaxToolRounds,
	})
	return &runtime{
		cfg:          cfg,
		registry:     reg,
		dispatcher:   dispatcher,
		orchestrator: orchestrator,
		store:        store,
	}
}

func TestHealthz(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["tools"] != float64(1) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestListTools(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/mcp/tools")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["echo_name"]; !ok {
		t.Fatalf("expected echo_name listed: %v", body)
	}
}

func TestCallToolSuccess(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/mcp/call/echo_name", "application/json",
		strings.NewReader(`{"bucket_name": "assets"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	result := body["result"].(map[string]any)
	if result["name"] != "assets" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestCallToolMissingParams(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/mcp/call/echo_name", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Missing required parameters: ['bucket_name']" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestCallToolNotFound(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/mcp/call/no_such_tool", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body["error"].(string), "no_such_tool") {
		t.Fatalf("unexpected error: %v", body["error"])
	}
	if _, ok := body["available_tools"]; !ok {
		t.Fatalf("expected available_tools: %v", body)
	}
}

func TestCallToolEmptyBody(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/mcp/call/echo_name", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	// An empty body is tolerated; the missing-params check still fires.
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestSendMessage(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{turn: chat.ModelTurn{Text: "hello there"}})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat/send_message", "application/json",
		strings.NewReader(`{"message": "hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["response"] != "hello there" || body["status"] != "success" {
		t.Fatalf("unexpected body: %v", body)
	}
	cookieSet := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Fatalf("expected session cookie")
	}
}

func TestSendMessageEmpty(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat/send_message", "application/json",
		strings.NewReader(`{"message": "  "}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestSendMessageProviderError(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{err: errors.New("upstream down")})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat/send_message", "application/json",
		strings.NewReader(`{"message": "hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestClearHistoryIssuesNewSession(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/chat/clear_history", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "old-session"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["session_id"] == "" || body["session_id"] == "old-session" {
		t.Fatalf("expected fresh session id: %v", body)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	rt := newTestRuntime(t, &stubProvider{})
	srv := httptest.NewServer(rt.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chat/settings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["provider"] != "stub" {
		t.Fatalf("unexpected default provider: %v", body)
	}

	bad, err := http.Post(srv.URL+"/chat/settings", "application/json",
		strings.NewReader(`{"provider": "nope"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad provider: %d", bad.StatusCode)
	}
}
