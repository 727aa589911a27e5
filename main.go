// Command blogsmith runs the AI blog-generation workflow: research,
// outline, draft, review and SEO optimization with a bounded revision
// loop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/blogsmith/cache"
	"github.com/dshills/blogsmith/config"
	"github.com/dshills/blogsmith/graph"
	"github.com/dshills/blogsmith/graph/emit"
	"github.com/dshills/blogsmith/graph/store"
	"github.com/dshills/blogsmith/model"
	"github.com/dshills/blogsmith/model/anthropic"
	"github.com/dshills/blogsmith/model/google"
	"github.com/dshills/blogsmith/model/openai"
	"github.com/dshills/blogsmith/repository"
	"github.com/dshills/blogsmith/services"
	"github.com/dshills/blogsmith/vector"
	"github.com/dshills/blogsmith/workflow"
)

func main() {
	var (
		topic      = flag.String("topic", "", "blog post topic (required unless -ingest)")
		niche      = flag.String("niche", "", "niche or focus area")
		audience   = flag.String("audience", "software developers", "target audience")
		words      = flag.Int("words", 0, "target word count (0 uses the default)")
		tone       = flag.String("tone", "informative", "writing tone")
		code       = flag.Bool("code", true, "include code examples")
		save       = flag.Bool("save", false, "persist the finished post and research session")
		ingest     = flag.String("ingest", "", "ingest a text/markdown file into the knowledge base and exit")
		configPath = flag.String("config", "", "path to YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *topic, *niche, *audience, *words, *tone, *code, *save, *ingest); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, topic, niche, audience string, words int, tone string, code, save bool, ingest string) error {
	chat, embedder, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	var c *cache.Cache
	if cfg.RedisURL != "" {
		c, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer c.Close()
		}
	}

	llm := services.NewLLM(chat, embedder, c)

	var rag *services.RAG
	if cfg.ChromaURL != "" {
		vc, err := vector.NewClient(ctx, cfg.ChromaURL, cfg.ChromaCollection)
		if err != nil {
			logger.Warn("vector store unavailable, continuing without it", zap.Error(err))
		} else {
			rag = services.NewRAG(llm, vc)
		}
	}

	var db *repository.DB
	if save || ingest != "" {
		db, err = repository.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	if ingest != "" {
		return ingestFile(ctx, logger, rag, db, ingest)
	}
	if topic == "" {
		return fmt.Errorf("-topic is required")
	}

	st, err := buildStateStore(cfg)
	if err != nil {
		return err
	}

	metrics, err := graph.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	var contentStore workflow.ContentStore
	if db != nil {
		contentStore = &repoContentStore{db: db}
	}

	runner, err := workflow.NewRunner(
		services.NewResearch(llm, rag),
		services.NewContent(llm),
		st,
		emit.NewZapEmitter(logger),
		metrics,
		contentStore,
		workflow.Policy{
			QualityThreshold: cfg.QualityThreshold,
			MaxRevisions:     cfg.MaxRevisions,
			MaxSteps:         cfg.MaxSteps,
		},
	)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, workflow.Request{
		Topic:          topic,
		Niche:          niche,
		TargetAudience: audience,
		TargetWords:    words,
		Tone:           tone,
		IncludeCode:    code,
		SaveToStore:    save,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if result.Status == workflow.StatusFailed {
		return fmt.Errorf("workflow failed: %s", result.Error)
	}
	return nil
}

// buildProvider selects the chat model and embedder for the configured
// provider. Anthropic has no embedding endpoint, so embeddings fall back
// to Google when a key is available.
func buildProvider(cfg config.Config) (model.ChatModel, model.Embedder, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, nil, fmt.Errorf("no API key configured for provider %s", cfg.Provider)
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewChatModel(key, cfg.ChatModel, ""), openai.NewEmbedder(key, cfg.EmbedModel), nil
	case config.ProviderAnthropic:
		var embedder model.Embedder
		if cfg.GoogleAPIKey != "" {
			embedder = google.NewEmbedder(cfg.GoogleAPIKey, cfg.EmbedModel)
		}
		return anthropic.NewChatModel(key, cfg.ChatModel), embedder, nil
	default:
		return google.NewChatModel(key, cfg.ChatModel), google.NewEmbedder(key, cfg.EmbedModel), nil
	}
}

func buildStateStore(cfg config.Config) (store.Store[workflow.BlogState], error) {
	switch cfg.StateStore {
	case config.StoreSQLite:
		return store.NewSQLiteStore[workflow.BlogState](cfg.StatePath)
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("state store: %w", err)
		}
		return store.NewRedisStore[workflow.BlogState](redis.NewClient(opts), 0)
	default:
		return store.NewMemStore[workflow.BlogState](), nil
	}
}

// ingestFile adds one document to the knowledge base: canonical text in
// the database, chunked embeddings in the vector store.
func ingestFile(ctx context.Context, logger *zap.Logger, rag *services.RAG, db *repository.DB, path string) error {
	if rag == nil {
		return fmt.Errorf("ingest requires a configured vector store (chroma_url)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	id, err := db.KnowledgeDocuments.Create(ctx, title, string(raw), "ingested", path)
	if err != nil {
		return err
	}
	chunks, err := rag.AddDocument(ctx, id, title, string(raw), map[string]string{"source": path})
	if err != nil {
		return err
	}
	logger.Info("document ingested", zap.String("id", id), zap.String("title", title), zap.Int("chunks", chunks))
	return nil
}

// repoContentStore adapts the repository layer to the workflow's
// persistence interface.
type repoContentStore struct {
	db *repository.DB
}

func (s *repoContentStore) CreateResearchSession(ctx context.Context, topic string, findings interface{}, sources []string) (string, error) {
	return s.db.ResearchSessions.Create(ctx, topic, findings, sources)
}

func (s *repoContentStore) CreateBlogPost(ctx context.Context, post workflow.BlogPostRecord) (string, string, error) {
	params := repository.BlogPostParams{
		Title:           post.Title,
		Content:         post.Content,
		Niche:           post.Niche,
		TargetAudience:  post.TargetAudience,
		MetaDescription: post.MetaDescription,
		Keywords:        post.Keywords,
		WordCount:       post.WordCount,
		Status:          post.Status,
	}
	if post.Outline != nil {
		params.Outline = post.Outline
	}
	return s.db.BlogPosts.Create(ctx, params)
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
