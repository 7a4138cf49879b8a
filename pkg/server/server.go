package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"awspanel/internal/audit"
	awsx "awspanel/internal/aws"
	"awspanel/internal/chat"
	"awspanel/internal/config"
	apmcp "awspanel/internal/mcp"
	"awspanel/internal/redact"
)

type Options struct {
	ConfigPath         string
	ListenAddr         string
	Region             string
	Profile            string
	Toolsets           []string
	ReadOnly           bool
	DisableDestructive bool
	ChatProvider       string
	MCPStdio           bool
	Version            string
	Stderr             io.Writer
}

// Run loads configuration, builds the runtime and serves either the HTTP
// panel API or, with MCPStdio, the registry over an MCP stdio transport.
func Run(ctx context.Context, opts Options) error {
	errOut := opts.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	overrides := config.Overrides{}
	if opts.ListenAddr != "" {
		overrides.ListenAddr = &opts.ListenAddr
	}
	if opts.Region != "" {
		overrides.Region = &opts.Region
	}
	if opts.Profile != "" {
		overrides.Profile = &opts.Profile
	}
	if len(opts.Toolsets) > 0 {
		overrides.Toolsets = &opts.Toolsets
	}
	if opts.ReadOnly {
		overrides.ReadOnly = &opts.ReadOnly
	}
	if opts.DisableDestructive {
		overrides.DisableDestructive = &opts.DisableDestructive
	}
	if opts.ChatProvider != "" {
		overrides.ChatProvider = &opts.ChatProvider
	}

	cfg, err := config.Load(opts.ConfigPath, "", overrides)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	runtime, err := buildRuntime(cfg, errOut)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	if opts.MCPStdio {
		server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "awspanel", Version: opts.Version}, nil)
		if _, err := apmcp.RegisterSDKTools(server, runtime.registry, runtime.dispatcher); err != nil {
			return fmt.Errorf("tool registration failed: %w", err)
		}
		if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	reload := make(chan os.Signal, 1)
	notifyReload(reload)
	go func() {
		for range reload {
			runtime.clients.Invalidate()
			fmt.Fprintln(errOut, "reload signal, AWS credential cache flushed")
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: runtime.routes(),
	}
	go func() {
		<-ctx.Done()
		signal.Stop(reload)
		_ = httpServer.Shutdown(context.Background())
	}()
	fmt.Fprintf(errOut, "listening on %s with %d tools\n", cfg.ListenAddr, runtime.registry.Count())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// runtime is the wired application: registry, dispatcher and chat
// orchestrator sharing one tool context.
type runtime struct {
	cfg          config.Config
	clients      *awsx.ClientSet
	registry     *apmcp.ToolRegistry
	dispatcher   *apmcp.Dispatcher
	orchestrator *chat.Orchestrator
	store        *chat.Store
	errOut       io.Writer
}

func buildRuntime(cfg config.Config, errOut io.Writer) (*runtime, error) {
	warn := func(format string, args ...any) {
		fmt.Fprintf(errOut, format+"\n", args...)
	}

	auditOut := io.Writer(errOut)
	if cfg.AuditLog != "" {
		file, err := os.OpenFile(cfg.AuditLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("audit log: %w", err)
		}
		auditOut = file
	}

	clients := awsx.NewClientSet(cfg.Region, cfg.Profile)
	reg := apmcp.NewRegistry(&cfg)
	toolCtx := apmcp.ToolContext{
		Config:   &cfg,
		AWS:      clients,
		Redactor: redact.New(),
		Audit:    audit.NewLogger(auditOut),
		Registry: reg,
	}
	dispatcher := apmcp.NewDispatcher(reg, apmcp.NewNormalizer(warn), toolCtx)
	toolCtx.Dispatcher = dispatcher

	for _, id := range cfg.Toolsets {
		factory, ok := apmcp.ToolsetFactoryFor(id)
		if !ok {
			return nil, fmt.Errorf("unknown toolset: %s", id)
		}
		toolset := factory()
		if err := toolset.Init(toolCtx); err != nil {
			return nil, err
		}
		if err := toolset.Register(reg); err != nil {
			return nil, err
		}
	}

	store := chat.NewStore(cfg.Chat.HistoryPairs)
	providers := map[string]chat.Provider{
		"gemini":   chat.NewGeminiProvider(cfg.Chat.Gemini, warn),
		"deepseek": chat.NewDeepSeekProvider(cfg.Chat.DeepSeek, warn),
	}
	orchestrator := chat.NewOrchestrator(chat.OrchestratorOptions{
		Providers:       providers,
		DefaultProvider: cfg.Chat.Provider,
		Registry:        reg,
		Dispatcher:      dispatcher,
		Store:           store,
		MaxToolRounds:   cfg.Chat.MaxToolRounds,
		Warn:            warn,
	})

	return &runtime{
		cfg:          cfg,
		clients:      clients,
		registry:     reg,
		dispatcher:   dispatcher,
		orchestrator: orchestrator,
		store:        store,
		errOut:       errOut,
	}, nil
}
