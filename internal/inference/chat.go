package inference

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Role is the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the local transcript.
type ChatMessage struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	SkillID SkillID   `json:"skillId,omitempty"`
	Failed  bool      `json:"failed,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

// Chat keeps the conversation with the assistant on the client side.
type Chat struct {
	client Client
	now    func() time.Time

	mu       sync.Mutex
	messages []ChatMessage
}

func NewChat(client Client) *Chat {
	return &Chat{
		client: client,
		now:    time.Now,
	}
}

// Send appends the user message, asks the assistant and appends its reply.
// A failed call is recorded as an assistant message describing the failure instead of an error.
func (c *Chat) Send(ctx context.Context, message string, skillID SkillID) ChatMessage {
	c.append(ChatMessage{Role: RoleUser, Content: message, SkillID: skillID, SentAt: c.now()})

	response, err := c.client.Complete(ctx, CompleteRequest{Message: message, SkillID: skillID})
	reply := ChatMessage{Role: RoleAssistant, Content: response.Text, SkillID: skillID}
	if err != nil {
		slog.Default().Warn("assistant request failed",
			"skillID", skillID,
			"error", err,
		)
		reply.Content = "Sorry, the assistant could not answer: " + err.Error()
		reply.Failed = true
	}
	reply.SentAt = c.now()
	c.append(reply)
	return reply
}

func (c *Chat) append(message ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Transcript returns a copy of the conversation so far.
func (c *Chat) Transcript() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.messages...)
}

func (c *Chat) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
