package inference

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for the AI assistant service.
// Every call is stateless; the conversation is kept by the caller.
type Client interface {
	Complete(ctx context.Context, params CompleteRequest) (CompleteResponse, error)
}

// DefaultMaxRetryAttempts is the number of retries after the first failed call.
const DefaultMaxRetryAttempts uint = 3

// SkillID names a system prompt. The zero value is the general assistant.
type SkillID string

const (
	SkillGeneral   SkillID = ""
	SkillSummarize SkillID = "summarize"
	SkillExpand    SkillID = "expand"
	SkillOutline   SkillID = "outline"
	SkillProofread SkillID = "proofread"
)

// Skills lists the named skills in the order they are offered to users.
var Skills = []SkillID{SkillSummarize, SkillExpand, SkillOutline, SkillProofread}

// ParseSkill returns the skill for id, rejecting unknown names.
func ParseSkill(id string) (SkillID, error) {
	if id == "" {
		return SkillGeneral, nil
	}
	for _, skill := range Skills {
		if string(skill) == id {
			return skill, nil
		}
	}
	return SkillGeneral, fmt.Errorf("unknown skill %q", id)
}

// CompleteRequest holds one user message for the assistant.
type CompleteRequest struct {
	Message string  `json:"message" validate:"required"`
	SkillID SkillID `json:"skillId,omitempty"`
}

type CompleteResponse struct {
	Text string `json:"text"`
}
