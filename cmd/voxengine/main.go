// Command voxengine is the process entrypoint: it loads configuration,
// wires every backing store and model client, assembles the engine and
// transport layers, and serves the HTTP/WebSocket surface until an
// interrupt or terminate signal asks it to shut down.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocql/gocql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkoukk/tiktoken-go"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/analytics"
	"github.com/vaak-ai/voxengine/internal/config"
	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/httpapi"
	"github.com/vaak-ai/voxengine/internal/llm"
	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/obs"
	"github.com/vaak-ai/voxengine/internal/retrieval"
	"github.com/vaak-ai/voxengine/internal/retrieval/sparseindex"
	"github.com/vaak-ai/voxengine/internal/retrieval/vectorstore"
	"github.com/vaak-ai/voxengine/internal/speech"
	"github.com/vaak-ai/voxengine/internal/store"
	"github.com/vaak-ai/voxengine/internal/tool"
	"github.com/vaak-ai/voxengine/internal/transport/webrtc"
	"github.com/vaak-ai/voxengine/internal/transport/ws"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the domain configuration YAML file")
	addr := flag.String("addr", envOr("VOXENGINE_ADDR", ":8080"), "HTTP listen address")
	flag.Parse()

	log, logErr := obs.NewLogger(envOr("VOXENGINE_LOG_LEVEL", "info"), os.Getenv("VOXENGINE_LOG_PATH"))
	if logErr != nil {
		log.Warn().Err(logErr).Msg("falling back to stdout logging")
	}

	cfgStore, err := config.NewStore(*configPath, log)
	if err != nil {
		log.Error().Err(err).Str("path", *configPath).Msg("failed to load configuration")
		return 1
	}

	mp, err := obs.NewMeterProvider("voxengine", "0.1.0")
	if err != nil {
		log.Error().Err(err).Msg("failed to build meter provider")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx, mp); err != nil {
			log.Warn().Err(err).Msg("meter provider shutdown error")
		}
	}()

	metrics, err := obs.NewMetrics(mp)
	if err != nil {
		log.Error().Err(err).Msg("failed to build metrics instruments")
		return 1
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is unset; llm/embedding/speech calls will fail at request time")
	}

	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Warn().Err(err).Msg("failed to load token encoding; falling back to chars/4 estimate")
	}

	slmModel := llm.NewOpenAIModel(llm.OpenAIConfig{
		APIKey:    apiKey,
		ModelName: envOr("VOXENGINE_SLM_MODEL", "gpt-4o-mini"),
		RoleName:  "slm",
	}, encoding)
	llmModel := llm.NewOpenAIModel(llm.OpenAIConfig{
		APIKey:    apiKey,
		ModelName: envOr("VOXENGINE_LLM_MODEL", "gpt-4o"),
		RoleName:  "llm",
	}, encoding)

	speculative := llm.NewExecutor(slmModel, llmModel, specConfigFrom(cfgStore.Get()))
	translator := llm.NewTranslator(llmModel)

	retriever, closeRetrieval, err := buildRetriever(cfgStore.Get(), apiKey, llmModel, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to wire retrieval backends")
		return 1
	}
	defer closeRetrieval()

	sessionStore, closeStore, err := buildSessionStore(log)
	if err != nil {
		log.Error().Err(err).Msg("failed to wire session store")
		return 1
	}
	defer closeStore()

	toolRegistry := tool.NewRegistry()
	registerBuiltinTools(toolRegistry)
	toolExecutor := tool.NewExecutor(toolRegistry, dispatchConfigFrom(cfgStore.Get()))

	eng := engine.New(retriever, toolExecutor, speculative, engine.DefaultPhoneticCorrector(), engineConfigFrom(cfgStore.Get()), log)

	factory := &httpapi.SessionFactory{
		Owner:      "voxengine",
		Classifier: dialog.NewIntentClassifier(defaultIntents()),
		Extractor:  dialog.NewSlotExtractor(),
		Goals:      defaultGoals(),
		MemoryCfg:  memoryConfigFrom(cfgStore.Get()),
	}
	sessions := httpapi.NewManager(factory, sessionStore, envOr("VOXENGINE_INSTANCE_ID", "voxengine-0"), 0, log)

	recoverCtx, recoverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	sessions.Recover(recoverCtx, 1000)
	recoverCancel()

	hub := ws.NewHub()

	var transcriber ws.Transcriber
	var synthesizer ws.Synthesizer
	if apiKey != "" {
		transcriber = speech.NewOpenAITranscriber(speech.OpenAITranscriberConfig{
			APIKey: apiKey,
			Model:  envOr("VOXENGINE_STT_MODEL", "whisper-1"),
		})
		synthesizer = speech.NewOpenAISynthesizer(speech.OpenAISynthesizerConfig{
			APIKey: apiKey,
			Model:  envOr("VOXENGINE_TTS_MODEL", "tts-1"),
			Voice:  envOr("VOXENGINE_TTS_VOICE", "alloy"),
		})
	}

	limiter := buildRateLimiter(log)

	turnAnalytics := buildAnalyticsExporter(log)
	var analyticsCollab ws.Analytics
	if turnAnalytics != nil {
		defer turnAnalytics.Close()
		analyticsCollab = turnAnalytics
	}

	wsHandler := &ws.Handler{
		Engine:      eng,
		Sessions:    sessions,
		Limiter:     limiter,
		Hub:         hub,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Analytics:   analyticsCollab,
		Log:         log,
	}

	webrtcMgr, err := webrtc.New(sessions, eng, transcriber, hub, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build webrtc manager")
		return 1
	}

	healthChecks := map[string]httpapi.HealthCheck{
		"session_store": func(ctx context.Context) error {
			_, err := sessionStore.ListIDs(ctx)
			return err
		},
	}
	readinessCheck := func(ctx context.Context) error {
		if apiKey == "" {
			return errors.New("OPENAI_API_KEY is unset")
		}
		return nil
	}

	server := httpapi.NewServer(
		cfgStore, sessions, eng, wsHandler, webrtcMgr,
		toolRegistry, toolExecutor, transcriber, synthesizer, translator,
		metrics, healthChecks, readinessCheck, log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	defer cleanupCancel()
	go sessions.RunCleanup(cleanupCtx, httpapi.CleanupInterval, httpapi.SessionTTL)

	srv := &http.Server{Addr: *addr, Handler: server.Router()}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", *addr).Msg("voxengine listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return 1
	}
	log.Info().Msg("goodbye")
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func specConfigFrom(c *config.Config) llm.Config {
	return llm.Config{
		Mode:                  llm.Mode(c.Mode),
		ComplexityThreshold:   c.ComplexityThreshold,
		SlmTimeout:            time.Duration(c.SlmTimeoutMs) * time.Millisecond,
		MinTokensBeforeSwitch: 10,
		QualityThreshold:      c.QualityThreshold,
		FallbackEnabled:       c.FallbackEnabled,
	}
}

func engineConfigFrom(c *config.Config) engine.Config {
	return engine.Config{
		ToolsEnabled:        true,
		SystemInstructions:  defaultPersona,
		StageGuidance:       defaultStageGuidance(),
		ContextWindowTokens: c.ContextWindowTokens,
	}
}

func memoryConfigFrom(c *config.Config) memory.Config {
	cfg := memory.DefaultConfig()
	cfg.WorkingMemorySize = c.WorkingMemorySize
	cfg.SummarizationThreshold = c.SummarizationThreshold
	cfg.MaxEpisodicSummaries = c.MaxEpisodicSummaries
	cfg.SemanticMemoryEnabled = c.SemanticMemoryEnabled
	cfg.LowWatermarkTokens = c.LowWatermarkTokens
	cfg.HighWatermarkTokens = c.HighWatermarkTokens
	cfg.MaxContextTokens = c.MaxContextTokens
	return cfg
}

func dispatchConfigFrom(c *config.Config) tool.DispatchConfig {
	return tool.DispatchConfig{Defaults: c.ToolDefaults}
}

func retrievalConfigFrom(c *config.Config) retrieval.Config {
	return retrieval.Config{
		DenseTopK:                   c.DenseTopK,
		SparseTopK:                  c.SparseTopK,
		FinalTopK:                   c.FinalTopK,
		MinScore:                    c.MinScore,
		DenseWeight:                 c.DenseWeight,
		RRFK:                        c.RRFK,
		RerankEnabled:               c.RerankingEnabled,
		PrefetchConfidenceThreshold: c.PrefetchConfidenceThreshold,
		PrefetchTopK:                c.PrefetchTopK,
	}
}

// buildRetriever wires the dense (Qdrant) and sparse (Postgres
// full-text) backends when their DSNs are configured, degrading to a nil
// backend (HybridRetriever's documented absent-backend contract)
// otherwise. The returned closer releases both client connections.
func buildRetriever(cfg *config.Config, apiKey string, rerankModel llm.Model, log zerolog.Logger) (*retrieval.HybridRetriever, func(), error) {
	closers := make([]func(), 0, 2)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	var dense vectorstore.Store
	if qdrantAddr := os.Getenv("QDRANT_ADDR"); qdrantAddr != "" {
		client, err := qdrant.NewClient(&qdrant.Config{Host: qdrantAddr, Port: 6334})
		if err != nil {
			return nil, closeAll, fmt.Errorf("qdrant client: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		embedder := vectorstore.NewOpenAIEmbedder(apiKey, envOr("VOXENGINE_EMBED_MODEL", "text-embedding-3-small"))
		dense = vectorstore.NewQdrantStore(client, embedder, envOr("QDRANT_COLLECTION", "voxengine_docs"))
	} else {
		log.Warn().Msg("QDRANT_ADDR unset; dense retrieval disabled")
	}

	var sparse sparseindex.Index
	if pgDSN := os.Getenv("POSTGRES_DSN"); pgDSN != "" {
		pool, err := pgxpool.New(context.Background(), pgDSN)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("postgres pool: %w", err)
		}
		closers = append(closers, pool.Close)
		sparse = sparseindex.NewPostgresIndex(pool, envOr("POSTGRES_DOCS_TABLE", "documents"))
	} else {
		log.Warn().Msg("POSTGRES_DSN unset; sparse retrieval disabled")
	}

	var expander retrieval.Expander
	if cfg.QueryExpansionEnabled {
		expander = retrieval.NewGoldLoanExpander()
	}

	var reranker retrieval.Reranker
	if cfg.RerankingEnabled {
		reranker = retrieval.NewCrossEncoderReranker(rerankModel)
	}

	return retrieval.New(dense, sparse, expander, reranker, retrievalConfigFrom(cfg)), closeAll, nil
}

// buildSessionStore wires ScyllaDB when SCYLLA_HOSTS is configured,
// falling back to the non-distributed in-memory store for a single-node
// deployment or local run.
func buildSessionStore(log zerolog.Logger) (store.Store, func(), error) {
	hosts := os.Getenv("SCYLLA_HOSTS")
	if hosts == "" {
		log.Warn().Msg("SCYLLA_HOSTS unset; using in-memory session store (no cross-restart recovery)")
		return store.NewMemStore(), func() {}, nil
	}

	cluster := gocql.NewCluster(hosts)
	cluster.Keyspace = envOr("SCYLLA_KEYSPACE", "voxengine")
	cluster.Consistency = gocql.Quorum
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, func() {}, fmt.Errorf("scylla session: %w", err)
	}
	return store.NewScyllaStore(session, envOr("SCYLLA_TABLE", "session_metadata")), session.Close, nil
}

// buildRateLimiter wires Redis-backed per-connection rate limiting when
// REDIS_ADDR is configured. A nil limiter leaves ws.Handler's rate check
// disabled.
func buildRateLimiter(log zerolog.Logger) *ws.RateLimiter {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Warn().Msg("REDIS_ADDR unset; websocket rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return ws.NewRateLimiter(client, 20, 1<<20, time.Minute)
}

// buildAnalyticsExporter wires Kafka-backed turn-event export when
// VOXENGINE_KAFKA_BROKERS is configured, leaving export disabled
// otherwise.
func buildAnalyticsExporter(log zerolog.Logger) *analytics.KafkaExporter {
	raw := os.Getenv("VOXENGINE_KAFKA_BROKERS")
	if raw == "" {
		log.Warn().Msg("VOXENGINE_KAFKA_BROKERS unset; turn analytics export disabled")
		return nil
	}
	brokers := analytics.ParseBrokers(raw)
	topic := envOr("VOXENGINE_KAFKA_TOPIC", "voxengine.turn_events")
	return analytics.NewKafkaExporter(brokers, topic)
}
