package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

type geminiProvider struct {
	apiKey string
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Chat(ctx context.Context, model string, system string, history []ChatMessage, tools []ToolDecl) (*ChatReply, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		contents = append(contents, toGeminiContent(msg))
	}
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, tool := range tools {
			decls = append(decls, toGeminiFunction(tool))
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	reply := &ChatReply{Text: strings.TrimSpace(resp.Text())}
	for _, call := range resp.FunctionCalls() {
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{Name: call.Name, Args: call.Args})
	}
	return reply, nil
}

func toGeminiContent(msg ChatMessage) *genai.Content {
	switch {
	case msg.ToolCall != nil:
		return &genai.Content{
			Role: "model",
			Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{
				Name: msg.ToolCall.Name,
				Args: msg.ToolCall.Args,
			}}},
		}
	case msg.ToolResult != nil:
		return &genai.Content{
			Role: "user",
			Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
				Name:     msg.ToolResult.Name,
				Response: msg.ToolResult.Response,
			}}},
		}
	default:
		role := "user"
		if msg.Role == RoleModel {
			role = "model"
		}
		return &genai.Content{Role: role, Parts: []*genai.Part{{Text: msg.Text}}}
	}
}

func toGeminiFunction(decl ToolDecl) *genai.FunctionDeclaration {
	props := make(map[string]*genai.Schema, len(decl.Params))
	var required []string
	for _, param := range decl.Params {
		props[param.Name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: param.Description,
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}
	return &genai.FunctionDeclaration{
		Name:        decl.Name,
		Description: decl.Description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: props,
			Required:   required,
		},
	}
}

type geminiEmbedProvider struct {
	apiKey string
}

func (p *geminiEmbedProvider) Name() string {
	return "gemini"
}

func (p *geminiEmbedProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	var config *genai.EmbedContentConfig
	if taskType != "" {
		config = &genai.EmbedContentConfig{
			TaskType: taskType,
		}
	}
	resp, err := client.Models.EmbedContent(
		ctx,
		model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}},
		config,
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding values returned", ErrUnavailable)
	}
	return resp.Embeddings[0].Values, nil
}

func createGeminiFactory(args interface{}) (IChatProvider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiProvider{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func createGeminiEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiEmbedProvider{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func init() {
	Register("gemini", createGeminiFactory)
	RegisterEmbed("gemini", createGeminiEmbedFactory)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
