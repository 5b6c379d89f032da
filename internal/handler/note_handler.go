package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/noteagent/internal/pkg/errcode"
	"github.com/xxxsen/noteagent/internal/pkg/response"
	"github.com/xxxsen/noteagent/internal/service"
)

type NoteHandler struct {
	notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteCreateRequest struct {
	Content string `json:"content"`
}

func (h *NoteHandler) Create(c *gin.Context) {
	var req noteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	note, err := h.notes.Create(c.Request.Context(), getUserID(c), req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": note.ID})
}

func (h *NoteHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid note id")
		return
	}
	note, err := h.notes.Get(c.Request.Context(), getUserID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, note)
}

func (h *NoteHandler) Export(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid note id")
		return
	}
	html, err := h.notes.ExportHTML(c.Request.Context(), getUserID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"html": html})
}
