package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/noteagent/internal/ai"
)

var (
	// ErrRetryBudgetExceeded is terminal: the model kept producing failing
	// tool calls and gets no further attempts this run.
	ErrRetryBudgetExceeded = errors.New("agent retry budget exceeded")
	ErrTooManyTurns        = errors.New("agent exceeded turn limit")
	ErrEmptyReply          = errors.New("model returned an empty reply")
)

type Config struct {
	// MaxRetries bounds retryable tool failures per run.
	MaxRetries int
	// MaxTurns bounds model round trips per run.
	MaxTurns int
	Now      func() time.Time
}

// Agent runs the tool-dispatch loop: the model decides per turn whether to
// call zero, one or several of the registered tools or to answer directly.
// Tool selection is the model's, driven by the system prompt; the agent is
// only a dispatcher over the registry.
type Agent struct {
	model  ai.IChatModel
	tools  []Tool
	byName map[string]Tool
	cfg    Config
}

func New(model ai.IChatModel, cfg Config, tools ...Tool) *Agent {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 8
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Decl.Name] = tool
	}
	return &Agent{model: model, tools: tools, byName: byName, cfg: cfg}
}

// Run replays prior history, feeds the query to the model and drives tool
// calls until the model produces a final text answer. It returns the answer
// together with the delta of messages generated during this run; the caller
// persists the delta.
func (a *Agent) Run(ctx context.Context, query string, history []Message) (string, []Message, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("model", a.model.ModelName()))
	system := SystemPrompt(a.cfg.Now())
	decls := make([]ai.ToolDecl, 0, len(a.tools))
	for _, tool := range a.tools {
		decls = append(decls, tool.Decl)
	}

	conversation := toChatMessages(history)
	delta := []Message{{Kind: MessageKindUser, Content: query}}
	conversation = append(conversation, ai.ChatMessage{Role: ai.RoleUser, Text: query})

	retries := 0
	for turn := 0; turn < a.cfg.MaxTurns; turn++ {
		reply, err := a.model.Chat(ctx, system, conversation, decls)
		if err != nil {
			return "", nil, fmt.Errorf("model call: %w", err)
		}
		if len(reply.ToolCalls) == 0 {
			if reply.Text == "" {
				return "", nil, ErrEmptyReply
			}
			delta = append(delta, Message{Kind: MessageKindAssistant, Content: reply.Text})
			return reply.Text, delta, nil
		}
		// Text accompanying tool calls is part of what the model said;
		// keep it so replayed history matches.
		if reply.Text != "" {
			textMsg := Message{Kind: MessageKindAssistant, Content: reply.Text}
			delta = append(delta, textMsg)
			conversation = append(conversation, toChatMessage(textMsg))
		}
		for _, call := range reply.ToolCalls {
			callMsg := Message{Kind: MessageKindToolCall, ToolName: call.Name, ToolArgs: call.Args}
			delta = append(delta, callMsg)
			conversation = append(conversation, toChatMessage(callMsg))

			output, err := a.dispatch(ctx, call)
			isError := false
			if err != nil {
				re, retryable := AsRetryable(err)
				if !retryable {
					return "", nil, fmt.Errorf("tool %s: %w", call.Name, err)
				}
				retries++
				logger.Info("tool call failed, feeding reason back to model",
					zap.String("tool", call.Name),
					zap.String("reason", re.Reason),
					zap.Int("retries", retries),
				)
				if retries > a.cfg.MaxRetries {
					return "", nil, fmt.Errorf("%w: %s", ErrRetryBudgetExceeded, re.Reason)
				}
				output = re.Reason
				isError = true
			}
			resultMsg := Message{Kind: MessageKindToolResult, ToolName: call.Name, Content: output, IsError: isError}
			delta = append(delta, resultMsg)
			conversation = append(conversation, toChatMessage(resultMsg))
		}
	}
	return "", nil, ErrTooManyTurns
}

func (a *Agent) dispatch(ctx context.Context, call ai.ToolCall) (string, error) {
	tool, ok := a.byName[call.Name]
	if !ok {
		return "", Retryablef("unknown tool %q", call.Name)
	}
	return tool.Run(ctx, call.Args)
}
