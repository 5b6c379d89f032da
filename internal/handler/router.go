package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xxxsen/noteagent/internal/middleware"
	"github.com/xxxsen/noteagent/internal/pkg/response"
)

type RouterDeps struct {
	Notes          *NoteHandler
	Agent          *AgentHandler
	Files          *FileHandler
	JWTSecret      []byte
	JWTAudience    string
	ChatRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret, deps.JWTAudience))

	authGroup.POST("/notes", deps.Notes.Create)
	authGroup.GET("/notes/:id", deps.Notes.Get)
	authGroup.GET("/notes/:id/export", deps.Notes.Export)

	authGroup.POST("/chats", deps.Agent.CreateChat)
	authGroup.GET("/chats", deps.Agent.ListChats)
	authGroup.POST("/agent/chat/:chat_id", middleware.RateLimit(deps.ChatRateWindow), deps.Agent.Chat)

	if deps.Files != nil {
		authGroup.POST("/files/upload", deps.Files.Upload)
		authGroup.GET("/files/:key", deps.Files.Get)
	}
}
