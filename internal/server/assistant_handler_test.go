package server

import (
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/outliner/internal/inference"
	mock_inference "github.com/at-ishikawa/outliner/internal/mocks/inference"
)

func TestAssistantService_Complete(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		request   *inference.CompleteRequest
		setupMock func(m *mock_inference.MockClient)
		wantCode  connect.Code
		wantText  string
	}{
		{
			name:    "returns the reply",
			userID:  "alice",
			request: &inference.CompleteRequest{Message: "make this shorter", SkillID: inference.SkillSummarize},
			setupMock: func(m *mock_inference.MockClient) {
				m.EXPECT().Complete(gomock.Any(), inference.CompleteRequest{
					Message: "make this shorter",
					SkillID: inference.SkillSummarize,
				}).Return(inference.CompleteResponse{Text: "Shorter."}, nil)
			},
			wantText: "Shorter.",
		},
		{
			name:      "rejects an unknown skill",
			userID:    "alice",
			request:   &inference.CompleteRequest{Message: "hi", SkillID: "poetry"},
			setupMock: func(m *mock_inference.MockClient) {},
			wantCode:  connect.CodeInvalidArgument,
		},
		{
			name:      "rejects an empty message",
			userID:    "alice",
			request:   &inference.CompleteRequest{},
			setupMock: func(m *mock_inference.MockClient) {},
			wantCode:  connect.CodeInvalidArgument,
		},
		{
			name:    "upstream failure is UNAVAILABLE",
			userID:  "alice",
			request: &inference.CompleteRequest{Message: "hi"},
			setupMock: func(m *mock_inference.MockClient) {
				m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(inference.CompleteResponse{}, errors.New("response error 503"))
			},
			wantCode: connect.CodeUnavailable,
		},
		{
			name:      "requires a user",
			request:   &inference.CompleteRequest{Message: "hi"},
			setupMock: func(m *mock_inference.MockClient) {},
			wantCode:  connect.CodeUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			tt.setupMock(s.assistant)

			got, err := call[inference.CompleteRequest, inference.CompleteResponse](t, s, CompleteProcedure, tt.userID, tt.request)
			if tt.wantCode != 0 {
				requireCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}
