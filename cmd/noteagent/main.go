package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/noteagent/internal/ai"
	"github.com/xxxsen/noteagent/internal/config"
	"github.com/xxxsen/noteagent/internal/db"
	"github.com/xxxsen/noteagent/internal/embedcache"
	"github.com/xxxsen/noteagent/internal/filestore"
	"github.com/xxxsen/noteagent/internal/handler"
	"github.com/xxxsen/noteagent/internal/job"
	"github.com/xxxsen/noteagent/internal/middleware"
	"github.com/xxxsen/noteagent/internal/pkg/jwt"
	"github.com/xxxsen/noteagent/internal/repo"
	"github.com/xxxsen/noteagent/internal/schedule"
	"github.com/xxxsen/noteagent/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "noteagent",
		Short: "noteagent backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run noteagent server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	var tokenUser string
	var tokenSecret string
	var tokenTTLHours int
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(tokenUser)
			if err != nil {
				return fmt.Errorf("--user must be a uuid: %w", err)
			}
			if tokenSecret == "" {
				return fmt.Errorf("--secret is required")
			}
			token, err := jwt.GenerateToken(userID, []byte(tokenSecret), "authenticated", time.Duration(tokenTTLHours)*time.Hour)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (uuid)")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "jwt secret")
	tokenCmd.Flags().IntVar(&tokenTTLHours, "ttl-hours", 72, "token ttl in hours")

	rootCmd.AddCommand(runCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	rawDB, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(rawDB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	database := sqlx.NewDb(rawDB, "postgres")

	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("chat_model", cfg.AI.ChatModel),
		zap.String("embed_model", cfg.AI.EmbedModel),
	)

	chatProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai embed provider: %w", err)
	}
	chatModel := ai.NewChatModel(chatProvider, cfg.AI.ChatModel)

	cacheRepo := repo.NewEmbeddingCacheRepo(database)
	embedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel)
	embedder = embedcache.WithDB(embedder, cacheRepo)
	embedder = embedcache.WithLRU(embedder, cfg.EmbedCache.LRUSize, time.Duration(cfg.EmbedCache.LRUTTLHours)*time.Hour)

	aiTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	noteService := service.NewNoteService(database, embedder, cfg.AI.EmbeddingDim)
	agentService := service.NewAgentService(database, chatModel, embedder, cfg.Agent, aiTimeout)

	deps := handler.RouterDeps{
		Notes:          handler.NewNoteHandler(noteService),
		Agent:          handler.NewAgentHandler(agentService),
		JWTSecret:      []byte(cfg.JWTSecret),
		JWTAudience:    cfg.JWTAudience,
		ChatRateWindow: time.Duration(cfg.Agent.ChatRateWindowSeconds) * time.Second,
	}
	if cfg.FileStore.Type != "" {
		store, err := filestore.New(cfg.FileStore)
		if err != nil {
			return fmt.Errorf("init file store: %w", err)
		}
		deps.Files = handler.NewFileHandler(store)
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			middleware.Metrics(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.EmbedCache.MaxAgeDays), cfg.EmbedCache.CleanupCron); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	scheduler.Start(ctx)

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()
	return nil
}
