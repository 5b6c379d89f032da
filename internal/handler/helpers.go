package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/noteagent/internal/agent"
	"github.com/xxxsen/noteagent/internal/ai"
	"github.com/xxxsen/noteagent/internal/middleware"
	"github.com/xxxsen/noteagent/internal/pkg/errcode"
	"github.com/xxxsen/noteagent/internal/pkg/errs"
	"github.com/xxxsen/noteagent/internal/pkg/response"
)

func getUserID(c *gin.Context) uuid.UUID {
	userID, _ := middleware.UserID(c)
	return userID
}

// handleError maps internal failures to API codes. The cause stays in the
// logs; the caller only sees the class of failure.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, errs.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, errs.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, errs.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, errs.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, agent.ErrHistoryCorrupt):
		response.Error(c, errcode.ErrHistoryCorrupt, "chat history unreadable")
	case errors.Is(err, agent.ErrRetryBudgetExceeded),
		errors.Is(err, agent.ErrTooManyTurns),
		errors.Is(err, agent.ErrEmptyReply):
		response.Error(c, errcode.ErrAgentFailed, "agent failed to answer")
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
