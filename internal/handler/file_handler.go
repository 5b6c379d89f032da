package handler

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/noteagent/internal/filestore"
	"github.com/xxxsen/noteagent/internal/pkg/errcode"
	"github.com/xxxsen/noteagent/internal/pkg/response"
)

// FileHandler serves note attachments through the configured store.
type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}

	key := buildFileKey(file.Filename)
	reader := nopSeekCloser{bytes.NewReader(data)}
	if err := h.store.Save(c.Request.Context(), key, reader, int64(len(data))); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"key":  key,
		"name": file.Filename,
	})
}

func (h *FileHandler) Get(c *gin.Context) {
	key := c.Param("key")
	reader, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		response.Error(c, errcode.ErrNotFound, "file not found")
		return
	}
	defer reader.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func buildFileKey(filename string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	ext := strings.ToLower(filepath.Ext(filename))
	return hex.EncodeToString(bytes) + ext
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error {
	return nil
}
