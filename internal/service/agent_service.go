package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/noteagent/internal/agent"
	"github.com/xxxsen/noteagent/internal/ai"
	"github.com/xxxsen/noteagent/internal/config"
	"github.com/xxxsen/noteagent/internal/model"
	"github.com/xxxsen/noteagent/internal/repo"
)

// AgentService wires one agent run per chat request. Concurrent runs against
// the same chat are not coordinated here; callers wanting strict history must
// keep one run in flight per chat.
type AgentService struct {
	db       *sqlx.DB
	chat     ai.IChatModel
	embedder ai.IEmbedder
	cfg      config.AgentConfig
	timeout  time.Duration
}

func NewAgentService(db *sqlx.DB, chat ai.IChatModel, embedder ai.IEmbedder, cfg config.AgentConfig, timeout time.Duration) *AgentService {
	return &AgentService{db: db, chat: chat, embedder: embedder, cfg: cfg, timeout: timeout}
}

func (s *AgentService) CreateChat(ctx context.Context, userID uuid.UUID, title string) (*model.Chat, error) {
	if strings.TrimSpace(title) == "" {
		title = "New chat"
	}
	sess, err := repo.OpenSession(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return repo.NewChatRepo(sess.Conn()).Create(ctx, userID, title)
}

func (s *AgentService) ListChats(ctx context.Context, userID uuid.UUID) ([]model.Chat, error) {
	sess, err := repo.OpenSession(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return repo.NewChatRepo(sess.Conn()).List(ctx)
}

// Chat runs one orchestrator turn for the user: replays the stored history,
// lets the model drive the tools over the session-scoped connection and
// persists this run's message delta as one row.
func (s *AgentService) Chat(ctx context.Context, userID uuid.UUID, chatID int64, query string) (string, error) {
	logger := logutil.GetLogger(ctx).With(zap.Int64("chat_id", chatID))
	sess, err := repo.OpenSession(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	chatRepo := repo.NewChatRepo(sess.Conn())
	if _, err := chatRepo.Get(ctx, chatID); err != nil {
		return "", err
	}

	msgRepo := repo.NewChatMessageRepo(sess.Conn())
	payloads, err := msgRepo.ListPayloads(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	history, err := agent.DecodeHistory(payloads)
	if err != nil {
		logger.Error("stored chat history failed to decode", zap.Error(err))
		return "", err
	}

	runner := agent.New(s.chat,
		agent.Config{MaxRetries: s.cfg.MaxRetries, MaxTurns: s.cfg.MaxTurns},
		agent.NewSearchNotesTool(s.embedder, repo.NewNoteRepo(sess.Conn()), agent.SearchParams{
			MaxDistance: s.cfg.MaxDistance,
			MaxResults:  s.cfg.MaxResults,
		}),
		agent.NewQueryMetadataTool(repo.NewMetadataRepo(sess.Conn())),
	)

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	answer, delta, err := runner.Run(runCtx, query, history)
	if err != nil {
		logger.Error("agent run failed", zap.Error(err))
		return "", err
	}

	payload, err := agent.EncodeMessages(delta)
	if err != nil {
		return "", fmt.Errorf("encode message delta: %w", err)
	}
	if err := msgRepo.Append(ctx, chatID, userID, payload); err != nil {
		return "", fmt.Errorf("persist message delta: %w", err)
	}
	logger.Info("agent run finished", zap.Int("new_messages", len(delta)))
	return answer, nil
}
