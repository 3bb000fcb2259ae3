package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"

	"aurelia/pkg/config"
	"aurelia/pkg/decision"
	"aurelia/pkg/graph"
	"aurelia/pkg/llm"
	"aurelia/pkg/llm/adapters/gemini"
	"aurelia/pkg/llm/adapters/ollama"
	"aurelia/pkg/llm/adapters/openai"
	"aurelia/pkg/memory/adapters/filestore"
	"aurelia/pkg/monitor"
	"aurelia/pkg/push"
	pushws "aurelia/pkg/push/adapters/websocket"
	"aurelia/pkg/registry"
	"aurelia/pkg/session"
	"aurelia/pkg/statelog"
	"aurelia/pkg/tools"
	"aurelia/pkg/turn"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial configuration load to get a log level before the main
	// loop starts; a fallback console setup if it fails here too.
	_, sysCfg, err := config.Load()
	if err == nil {
		monitor.SetupEnvironment(sysCfg.LogLevel)
	}

	reloadCh := config.WatchConfig(ctx, "config.json", "system.json")

	for {
		err := runCore(ctx, reloadCh)
		if err != nil {
			slog.Error("core crashed or failed to start", "error", err)
			slog.Info("waiting 5 seconds before retrying...")
			select {
			case <-ctx.Done():
				return
			case <-reloadCh:
				slog.Info("configuration change detected while waiting, retrying immediately")
			case <-time.After(5 * time.Second):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
			slog.Info("==== configuration reloaded, rebuilding core ====")
		}
	}
}

// providerConfig is one entry in config.json's "llm.providers" array.
type providerConfig struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type llmConfig struct {
	Providers    []providerConfig `json:"providers"`
	DefaultModel string            `json:"default_model"`
}

// runCore wires one full instance of the orchestration core and blocks
// until shutdown or a config change.
func runCore(ctx context.Context, reloadCh <-chan struct{}) error {
	cfg, sysCfg, err := config.Load()
	if err != nil {
		monitor.PrintBanner()
		monitor.SetupSlog("info")
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	mon := monitor.SetupEnvironment(sysCfg.LogLevel)
	if err := mon.Start(); err != nil {
		slog.Warn("monitor failed to start", "error", err)
	}
	defer mon.Stop()
	slog.Info("==========================================")

	fallback, defaultModel, err := buildProviders(cfg.LLM, sysCfg)
	if err != nil {
		return fmt.Errorf("failed to build LLM providers: %w", err)
	}

	client := llm.NewClient("data/llm_logs")
	store := filestore.New("data/memory")
	sink := statelog.New("data/state_snapshots")
	metrics := monitor.NewMetrics()

	node := &decision.Node{
		Client:                   client,
		Provider:                 fallback,
		Model:                    defaultModel,
		Store:                    store,
		Persona:                  cfg.SystemPrompt,
		RecentConversationsLimit: sysCfg.RecentConversationsLimit,
	}

	reg := registry.New(graph.UnifiedDecisionNode)
	if err := reg.Register(graph.NodeInfo{
		Name:        graph.UnifiedDecisionNode,
		Description: "Interprets the turn, optionally routes to a tool, and produces the reply.",
		Handler:     node.Handle,
	}); err != nil {
		return fmt.Errorf("failed to register decision node: %w", err)
	}

	weatherNode := &tools.WeatherNode{Lookup: unconfiguredWeatherLookup{}}
	if err := reg.Register(graph.NodeInfo{
		Name:              "weather_search",
		Description:       "Looks up current weather for a city mentioned in the conversation.",
		Capabilities:      []string{"weather"},
		InputRequirements: []string{"city"},
		OutputFields:      []string{"response"},
		Handler:           weatherNode.Handle,
	}); err != nil {
		return fmt.Errorf("failed to register weather node: %w", err)
	}

	memNode := &tools.MemorySearchNode{Searcher: unconfiguredSearcher{}}
	if err := reg.Register(graph.NodeInfo{
		Name:              "memory_search",
		Description:       "Searches long-term memory for facts relevant to the current turn.",
		Capabilities:      []string{"memory"},
		InputRequirements: []string{"query"},
		OutputFields:      []string{"response"},
		Handler:           memNode.Handle,
	}); err != nil {
		return fmt.Errorf("failed to register memory search node: %w", err)
	}

	reg.Seal()

	executor := graph.NewExecutor(reg.ListAll(), sink, metrics)
	coordinator := turn.New(reg, executor, sink, store, sysCfg.DefaultInactivityTimeoutSec)
	coordinator.Monitor = mon
	coordinator.HistorySummarizeThreshold = sysCfg.HistorySummarizeThreshold
	coordinator.HistoryKeepRecentCount = sysCfg.HistoryKeepRecentCount
	coordinator.HistoryMaxChars = sysCfg.HistoryMaxChars
	coordinator.HistoryMaxTokens = sysCfg.HistoryMaxTokens

	pushChannel := buildPushChannel(cfg)
	sessionMgr := session.New(coordinator, pushChannel, nil, "")
	sessionMgr.Metrics = metrics

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	const cliSessionID = "cli-session"
	sessionMgr.SetActive(cliSessionID)

	for {
		select {
		case <-ctx.Done():
			slog.Info("received shutdown signal, stopping...")
			return nil
		case <-reloadCh:
			slog.Info("configuration changes detected, restarting core...")
			return nil
		case text, ok := <-lines:
			if !ok {
				return nil
			}
			result := coordinator.HandleTurn(ctx, cliSessionID, text, nil, turn.Flags{})
			if result.Response != "" {
				fmt.Println(result.Response)
			}
			sessionMgr.Arm(cliSessionID, result.InactivityTimeout)
		}
	}
}

// buildProviders assembles a FallbackAdapter from the configured
// provider list, in order. The returned model is llm.default_model when
// set, otherwise the first provider's model.
func buildProviders(raw jsoniter.RawMessage, sysCfg *config.SystemConfig) (*llm.FallbackAdapter, string, error) {
	var cfg llmConfig
	if len(raw) > 0 {
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &cfg); err != nil {
			return nil, "", fmt.Errorf("invalid llm config: %w", err)
		}
	}
	if len(cfg.Providers) == 0 {
		return nil, "", fmt.Errorf("no llm providers configured")
	}

	adapters := make([]llm.ProviderAdapter, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		switch p.Name {
		case "openai":
			adapters = append(adapters, openai.New(p.APIKey, p.BaseURL))
		case "gemini":
			adapter, err := gemini.New(context.Background(), p.APIKey)
			if err != nil {
				return nil, "", fmt.Errorf("gemini provider: %w", err)
			}
			adapters = append(adapters, adapter)
		case "ollama":
			baseURL := p.BaseURL
			if baseURL == "" {
				baseURL = sysCfg.OllamaDefaultURL
			}
			adapter, err := ollama.New(baseURL)
			if err != nil {
				return nil, "", fmt.Errorf("ollama provider: %w", err)
			}
			adapters = append(adapters, adapter)
		default:
			return nil, "", fmt.Errorf("unknown llm provider %q", p.Name)
		}
	}

	model := cfg.DefaultModel
	if model == "" {
		model = cfg.Providers[0].Model
	}

	return &llm.FallbackAdapter{
		Adapters:   adapters,
		MaxRetries: sysCfg.MaxRetries,
		RetryDelay: time.Duration(sysCfg.RetryDelayMs) * time.Millisecond,
	}, model, nil
}

// buildPushChannel picks a reference push.Channel adapter. Binding real
// transport connections to session ids is the transport layer's job,
// out of scope here — this just gives the session manager something to
// call. Telegram's reference adapter needs a live bot-token round trip
// to construct, so websocket is the safe startup default.
func buildPushChannel(_ *config.Config) push.Channel {
	return pushws.New()
}

// unconfiguredWeatherLookup is the default WeatherLookup until an
// operator wires a real weather API key into config.json.
type unconfiguredWeatherLookup struct{}

func (unconfiguredWeatherLookup) Lookup(_ context.Context, city string) (string, error) {
	return "", fmt.Errorf("weather lookup not configured for city %q", city)
}

// unconfiguredSearcher is the default memory.Searcher until an
// operator wires a real long-term memory search backend.
type unconfiguredSearcher struct{}

func (unconfiguredSearcher) Search(_ context.Context, query string) (string, error) {
	return "", fmt.Errorf("memory search not configured for query %q", query)
}
