package server

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/outliner/internal/inference"
)

// AssistantHandler forwards single messages to the AI assistant. The server keeps no
// conversation; clients hold their own transcript.
type AssistantHandler struct {
	client    inference.Client
	validator *requestValidator
}

func NewAssistantHandler(client inference.Client) (*AssistantHandler, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("newRequestValidator() > %w", err)
	}
	return &AssistantHandler{client: client, validator: v}, nil
}

// Complete returns the assistant's reply. Failures of the upstream service map to Unavailable.
func (h *AssistantHandler) Complete(
	ctx context.Context,
	req *connect.Request[inference.CompleteRequest],
) (*connect.Response[inference.CompleteResponse], error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.validator.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := inference.ParseSkill(string(req.Msg.SkillID)); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	resp, err := h.client.Complete(ctx, *req.Msg)
	if err != nil {
		slog.Default().Warn("assistant request failed", "userID", userID, "skill", req.Msg.SkillID, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("client.Complete() > %w", err))
	}
	return connect.NewResponse(&resp), nil
}
