package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/noteagent/internal/ai"
)

// scriptedModel replays a fixed sequence of replies and records what it was
// asked each turn.
type scriptedModel struct {
	replies []*ai.ChatReply
	turns   [][]ai.ChatMessage
}

func (m *scriptedModel) Chat(ctx context.Context, system string, history []ai.ChatMessage, tools []ai.ToolDecl) (*ai.ChatReply, error) {
	m.turns = append(m.turns, append([]ai.ChatMessage(nil), history...))
	if len(m.turns) > len(m.replies) {
		return nil, errors.New("scripted model ran out of replies")
	}
	return m.replies[len(m.turns)-1], nil
}

func (m *scriptedModel) ModelName() string { return "scripted" }

func echoTool(name string) Tool {
	return Tool{
		Decl: ai.ToolDecl{Name: name},
		Run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			value, err := stringArg(args, "query")
			if err != nil {
				return "", err
			}
			return "echo: " + value, nil
		},
	}
}

func failingTool(name string, err error) Tool {
	return Tool{
		Decl: ai.ToolDecl{Name: name},
		Run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return "", err
		},
	}
}

func TestAgentDirectAnswer(t *testing.T) {
	model := &scriptedModel{replies: []*ai.ChatReply{{Text: "hello"}}}
	a := New(model, Config{}, echoTool("search_notes"))

	answer, delta, err := a.Run(context.Background(), "hi", nil)
	require.NoError(t, err)
	require.Equal(t, "hello", answer)
	require.Len(t, delta, 2)
	require.Equal(t, MessageKindUser, delta[0].Kind)
	require.Equal(t, MessageKindAssistant, delta[1].Kind)
}

func TestAgentDispatchesToolThenAnswers(t *testing.T) {
	model := &scriptedModel{replies: []*ai.ChatReply{
		{ToolCalls: []ai.ToolCall{{Name: "search_notes", Args: map[string]interface{}{"query": "go"}}}},
		{Text: "found it"},
	}}
	a := New(model, Config{}, echoTool("search_notes"))

	answer, delta, err := a.Run(context.Background(), "find go", nil)
	require.NoError(t, err)
	require.Equal(t, "found it", answer)
	require.Len(t, delta, 4)
	require.Equal(t, MessageKindToolCall, delta[1].Kind)
	require.Equal(t, MessageKindToolResult, delta[2].Kind)
	require.Equal(t, "echo: go", delta[2].Content)
	require.False(t, delta[2].IsError)

	// Second turn sees the tool call and its result in the conversation.
	last := model.turns[1]
	require.NotNil(t, last[len(last)-2].ToolCall)
	require.NotNil(t, last[len(last)-1].ToolResult)
}

func TestAgentKeepsTextAlongsideToolCalls(t *testing.T) {
	model := &scriptedModel{replies: []*ai.ChatReply{
		{Text: "Let me check your notes.", ToolCalls: []ai.ToolCall{{Name: "search_notes", Args: map[string]interface{}{"query": "go"}}}},
		{Text: "done"},
	}}
	a := New(model, Config{}, echoTool("search_notes"))

	_, delta, err := a.Run(context.Background(), "find go", nil)
	require.NoError(t, err)
	require.Len(t, delta, 5)
	require.Equal(t, MessageKindAssistant, delta[1].Kind)
	require.Equal(t, "Let me check your notes.", delta[1].Content)
	require.Equal(t, MessageKindToolCall, delta[2].Kind)

	// The interim text is replayed to the model on the next turn.
	last := model.turns[1]
	require.Equal(t, ai.RoleModel, last[1].Role)
	require.Equal(t, "Let me check your notes.", last[1].Text)
}

func TestAgentFeedsRetryableFailureBack(t *testing.T) {
	model := &scriptedModel{replies: []*ai.ChatReply{
		{ToolCalls: []ai.ToolCall{{Name: "query_notes_metadata", Args: map[string]interface{}{"query": "DROP TABLE notes"}}}},
		{Text: "sorry, cannot do that"},
	}}
	a := New(model, Config{MaxRetries: 2}, failingTool("query_notes_metadata", Retryablef("Invalid SELECT SQL query")))

	answer, delta, err := a.Run(context.Background(), "wipe my notes", nil)
	require.NoError(t, err)
	require.Equal(t, "sorry, cannot do that", answer)
	require.True(t, delta[2].IsError)
	require.Equal(t, "Invalid SELECT SQL query", delta[2].Content)
}

func TestAgentRetryBudgetExceeded(t *testing.T) {
	bad := ai.ToolCall{Name: "query_notes_metadata", Args: map[string]interface{}{"query": "DROP TABLE notes"}}
	model := &scriptedModel{replies: []*ai.ChatReply{
		{ToolCalls: []ai.ToolCall{bad}},
		{ToolCalls: []ai.ToolCall{bad}},
		{ToolCalls: []ai.ToolCall{bad}},
	}}
	a := New(model, Config{MaxRetries: 2}, failingTool("query_notes_metadata", Retryablef("Invalid SELECT SQL query")))

	_, _, err := a.Run(context.Background(), "wipe my notes", nil)
	require.ErrorIs(t, err, ErrRetryBudgetExceeded)
	// Third failure is over budget and never reaches the model.
	require.Len(t, model.turns, 3)
}

func TestAgentNonRetryableToolErrorAborts(t *testing.T) {
	boom := errors.New("connection reset")
	model := &scriptedModel{replies: []*ai.ChatReply{
		{ToolCalls: []ai.ToolCall{{Name: "search_notes", Args: map[string]interface{}{"query": "go"}}}},
	}}
	a := New(model, Config{}, failingTool("search_notes", boom))

	_, _, err := a.Run(context.Background(), "find go", nil)
	require.ErrorIs(t, err, boom)
}

func TestAgentUnknownToolIsRetryable(t *testing.T) {
	model := &scriptedModel{replies: []*ai.ChatReply{
		{ToolCalls: []ai.ToolCall{{Name: "read_minds", Args: map[string]interface{}{}}}},
		{Text: "never mind"},
	}}
	a := New(model, Config{}, echoTool("search_notes"))

	answer, delta, err := a.Run(context.Background(), "guess", nil)
	require.NoError(t, err)
	require.Equal(t, "never mind", answer)
	require.True(t, delta[2].IsError)
	require.Contains(t, delta[2].Content, "read_minds")
}

func TestAgentEmptyReply(t *testing.T) {
	model := &scriptedModel{replies: []*ai.ChatReply{{}}}
	a := New(model, Config{})

	_, _, err := a.Run(context.Background(), "hi", nil)
	require.ErrorIs(t, err, ErrEmptyReply)
}

func TestAgentTurnLimit(t *testing.T) {
	call := ai.ToolCall{Name: "search_notes", Args: map[string]interface{}{"query": "go"}}
	replies := make([]*ai.ChatReply, 0, 4)
	for i := 0; i < 4; i++ {
		replies = append(replies, &ai.ChatReply{ToolCalls: []ai.ToolCall{call}})
	}
	model := &scriptedModel{replies: replies}
	a := New(model, Config{MaxTurns: 3}, echoTool("search_notes"))

	_, _, err := a.Run(context.Background(), "loop", nil)
	require.ErrorIs(t, err, ErrTooManyTurns)
	require.Len(t, model.turns, 3)
}

func TestAgentReplaysHistory(t *testing.T) {
	model := &scriptedModel{replies: []*ai.ChatReply{{Text: "again?"}}}
	a := New(model, Config{})

	history := []Message{
		{Kind: MessageKindUser, Content: "first question"},
		{Kind: MessageKindAssistant, Content: "first answer"},
	}
	_, delta, err := a.Run(context.Background(), "second question", history)
	require.NoError(t, err)

	// Prior runs are replayed before the new query but never re-persisted.
	require.Len(t, model.turns[0], 3)
	require.Equal(t, "first question", model.turns[0][0].Text)
	require.Equal(t, "second question", model.turns[0][2].Text)
	require.Len(t, delta, 2)
	require.Equal(t, "second question", delta[0].Content)
}
