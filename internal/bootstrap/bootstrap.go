package bootstrap

import (
	"github.com/kpetrov/docsqa/internal/config"
	"github.com/kpetrov/docsqa/internal/core/ports"
	"github.com/kpetrov/docsqa/internal/core/usecase"
	"github.com/kpetrov/docsqa/internal/infrastructure/conversation"
	"github.com/kpetrov/docsqa/internal/infrastructure/extractor/markup"
	"github.com/kpetrov/docsqa/internal/infrastructure/llm/ollama"
	"github.com/kpetrov/docsqa/internal/infrastructure/resilience"
	"github.com/kpetrov/docsqa/internal/infrastructure/source/confluence"
	"github.com/kpetrov/docsqa/internal/infrastructure/vector/memindex"
	"github.com/kpetrov/docsqa/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Answerer     ports.ChatAnswerer
	Conversation ports.ConversationLog
	Initializer  *usecase.Initializer
	Metrics      *metrics.ServerMetrics
}

func New(cfg config.Config) *App {
	executor := resilience.NewExecutor(resilience.DefaultConfig())
	serverMetrics := metrics.NewServerMetrics("api")

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	source := confluence.New(confluence.Config{
		BaseURL:   cfg.ConfluenceBaseURL,
		SpaceKey:  cfg.ConfluenceSpaceKey,
		Email:     cfg.ConfluenceEmail,
		APIToken:  cfg.ConfluenceAPIToken,
		PageLimit: cfg.ConfluencePageLimit,
	}, executor)

	extractor := markup.NewExtractor()
	index := memindex.New(embedder)
	convo := conversation.NewLog(cfg.MaxTurns)

	initializer := usecase.NewInitializer(source, extractor, index, serverMetrics)
	answerer := usecase.NewAnswerUseCase(index, generator, convo, cfg.RAGTopK, cfg.ExcerptLength)

	return &App{
		Config: cfg,

		Answerer:     answerer,
		Conversation: convo,
		Initializer:  initializer,
		Metrics:      serverMetrics,
	}
}
