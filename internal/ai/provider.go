package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnavailable = errors.New("ai provider unavailable")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// ToolResult carries a tool's output (or its failure reason) back to the model.
type ToolResult struct {
	Name     string
	Response map[string]interface{}
}

// ChatMessage is one node of the conversation in replay order. Exactly one of
// Text, ToolCall or ToolResult is set.
type ChatMessage struct {
	Role       Role
	Text       string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

type ToolParam struct {
	Name        string
	Description string
	Required    bool
}

type ToolDecl struct {
	Name        string
	Description string
	Params      []ToolParam
}

type ChatReply struct {
	Text      string
	ToolCalls []ToolCall
}

type IChatProvider interface {
	Name() string
	Chat(ctx context.Context, model string, system string, history []ChatMessage, tools []ToolDecl) (*ChatReply, error)
}

type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error)
}

type IChatModel interface {
	Chat(ctx context.Context, system string, history []ChatMessage, tools []ToolDecl) (*ChatReply, error)
	ModelName() string
}

type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type chatModel struct {
	provider IChatProvider
	model    string
}

func NewChatModel(p IChatProvider, model string) IChatModel {
	return &chatModel{provider: p, model: model}
}

func (m *chatModel) Chat(ctx context.Context, system string, history []ChatMessage, tools []ToolDecl) (*ChatReply, error) {
	return m.provider.Chat(ctx, m.model, system, history, tools)
}

func (m *chatModel) ModelName() string {
	return m.model
}

type embedder struct {
	provider IEmbedProvider
	model    string
}

func NewEmbedder(p IEmbedProvider, model string) IEmbedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return e.provider.Embed(ctx, e.model, text, taskType)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ChatProviderFactory func(args interface{}) (IChatProvider, error)

type EmbedProviderFactory func(args interface{}) (IEmbedProvider, error)

var (
	chatRegistry  = map[string]ChatProviderFactory{}
	embedRegistry = map[string]EmbedProviderFactory{}
)

func Register(name string, factory ChatProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	chatRegistry[key] = factory
}

func RegisterEmbed(name string, factory EmbedProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func NewProvider(name string, args interface{}) (IChatProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := chatRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai embed provider: %s", name)
	}
	return factory(args)
}
