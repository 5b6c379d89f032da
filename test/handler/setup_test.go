package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/noteagent/internal/ai"
	"github.com/xxxsen/noteagent/internal/config"
	"github.com/xxxsen/noteagent/internal/handler"
	"github.com/xxxsen/noteagent/internal/middleware"
	"github.com/xxxsen/noteagent/internal/pkg/jwt"
	"github.com/xxxsen/noteagent/internal/service"
	"github.com/xxxsen/noteagent/test/testutil"
)

const (
	testSecret   = "test-secret"
	testAudience = "authenticated"
	embeddingDim = 768
)

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vector, nil
}

func (f *fixedEmbedder) ModelName() string { return "fixed" }

// scriptedChat replays canned replies in order.
type scriptedChat struct {
	replies []*ai.ChatReply
	calls   int
}

func (m *scriptedChat) Chat(ctx context.Context, system string, history []ai.ChatMessage, tools []ai.ToolDecl) (*ai.ChatReply, error) {
	m.calls++
	return m.replies[m.calls-1], nil
}

func (m *scriptedChat) ModelName() string { return "scripted" }

func unitEmbedding() []float32 {
	v := make([]float32, embeddingDim)
	v[0] = 1
	return v
}

func setupRouter(t *testing.T, chat ai.IChatModel) (http.Handler, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	testutil.ResetTables(t, db)

	embedder := &fixedEmbedder{vector: unitEmbedding()}
	agentCfg := config.AgentConfig{
		MaxDistance: 0.5,
		MaxResults:  5,
		MaxRetries:  2,
		MaxTurns:    8,
	}

	deps := handler.RouterDeps{
		Notes:       handler.NewNoteHandler(service.NewNoteService(db, embedder, embeddingDim)),
		Agent:       handler.NewAgentHandler(service.NewAgentService(db, chat, embedder, agentCfg, 0)),
		JWTSecret:   []byte(testSecret),
		JWTAudience: testAudience,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return engine, cleanup
}

func authToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, []byte(testSecret), testAudience, time.Hour)
	require.NoError(t, err)
	return token
}
