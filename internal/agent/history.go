package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xxxsen/noteagent/internal/ai"
)

// ErrHistoryCorrupt means a stored message payload no longer parses back into
// the typed representation. It is a data-integrity failure, never something
// the model gets to retry.
var ErrHistoryCorrupt = errors.New("chat history corrupt")

type MessageKind string

const (
	MessageKindUser       MessageKind = "user"
	MessageKindAssistant  MessageKind = "assistant"
	MessageKindToolCall   MessageKind = "tool_call"
	MessageKindToolResult MessageKind = "tool_result"
)

// Message is one node of the conversation. Slice order is conversation order
// and must survive the round trip through storage exactly; reordering
// corrupts the model's context.
type Message struct {
	Kind     MessageKind            `json:"kind"`
	Content  string                 `json:"content,omitempty"`
	ToolName string                 `json:"tool_name,omitempty"`
	ToolArgs map[string]interface{} `json:"tool_args,omitempty"`
	IsError  bool                   `json:"is_error,omitempty"`
}

// EncodeMessages serializes the delta of one run for storage as a single
// chat_messages row.
func EncodeMessages(messages []Message) ([]byte, error) {
	return json.Marshal(messages)
}

func DecodeMessages(payload []byte) ([]Message, error) {
	var messages []Message
	if err := json.Unmarshal(payload, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryCorrupt, err)
	}
	for _, msg := range messages {
		switch msg.Kind {
		case MessageKindUser, MessageKindAssistant, MessageKindToolCall, MessageKindToolResult:
		default:
			return nil, fmt.Errorf("%w: unknown message kind %q", ErrHistoryCorrupt, msg.Kind)
		}
	}
	return messages, nil
}

// DecodeHistory rebuilds the full conversation from stored row payloads in
// their storage order.
func DecodeHistory(payloads [][]byte) ([]Message, error) {
	var history []Message
	for _, payload := range payloads {
		messages, err := DecodeMessages(payload)
		if err != nil {
			return nil, err
		}
		history = append(history, messages...)
	}
	return history, nil
}

func toChatMessage(msg Message) ai.ChatMessage {
	switch msg.Kind {
	case MessageKindAssistant:
		return ai.ChatMessage{Role: ai.RoleModel, Text: msg.Content}
	case MessageKindToolCall:
		return ai.ChatMessage{Role: ai.RoleModel, ToolCall: &ai.ToolCall{Name: msg.ToolName, Args: msg.ToolArgs}}
	case MessageKindToolResult:
		response := map[string]interface{}{"result": msg.Content}
		if msg.IsError {
			response = map[string]interface{}{"error": msg.Content}
		}
		return ai.ChatMessage{Role: ai.RoleUser, ToolResult: &ai.ToolResult{Name: msg.ToolName, Response: response}}
	default:
		return ai.ChatMessage{Role: ai.RoleUser, Text: msg.Content}
	}
}

func toChatMessages(messages []Message) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toChatMessage(msg))
	}
	return out
}
