package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/noteagent/internal/pkg/errcode"
	"github.com/xxxsen/noteagent/internal/pkg/response"
	"github.com/xxxsen/noteagent/internal/service"
)

type AgentHandler struct {
	agents *service.AgentService
}

func NewAgentHandler(agents *service.AgentService) *AgentHandler {
	return &AgentHandler{agents: agents}
}

type chatCreateRequest struct {
	Title string `json:"title"`
}

type agentChatRequest struct {
	Query string `json:"query"`
}

func (h *AgentHandler) CreateChat(c *gin.Context) {
	var req chatCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	chat, err := h.agents.CreateChat(c.Request.Context(), getUserID(c), req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": chat.ID})
}

func (h *AgentHandler) ListChats(c *gin.Context) {
	chats, err := h.agents.ListChats(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chats": chats})
}

func (h *AgentHandler) Chat(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid chat id")
		return
	}
	var req agentChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	answer, err := h.agents.Chat(c.Request.Context(), getUserID(c), chatID, req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"response": answer})
}
