// Package server provides Connect RPC handlers for the note and assistant services.
package server

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
)

type GetNoteRequest struct {
	NoteID string `json:"noteId" validate:"required,max=64"`
}

type GetNoteResponse struct {
	Note *note.Note `json:"note"`
}

type SaveNoteRequest struct {
	NoteID string     `json:"noteId" validate:"required,max=64"`
	Note   *note.Note `json:"note" validate:"required"`
}

type SaveNoteResponse struct {
	Note *note.Note `json:"note"`
}

type UpdateNoteMetaRequest struct {
	NoteID string         `json:"noteId" validate:"required,max=64"`
	Patch  note.MetaPatch `json:"patch"`
}

type UpdateNoteMetaResponse struct{}

type DeleteNoteRequest struct {
	NoteID string `json:"noteId" validate:"required,max=64"`
}

type DeleteNoteResponse struct{}

type ListNotesRequest struct{}

type ListNotesResponse struct {
	Notes []note.Note `json:"notes"`
}

type ListNotebooksRequest struct{}

type ListNotebooksResponse struct {
	Notebooks []note.Notebook `json:"notebooks"`
}

type CreateNotebookRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type CreateNotebookResponse struct {
	Notebook *note.Notebook `json:"notebook"`
}

type DeleteNotebookRequest struct {
	NotebookID string `json:"notebookId" validate:"required,max=64"`
}

type DeleteNotebookResponse struct{}

// NoteHandler serves the persistence service for the caller in the request context.
type NoteHandler struct {
	store     note.Repository
	engine    *outline.Engine
	validator *requestValidator
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(store note.Repository, engine *outline.Engine) (*NoteHandler, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("newRequestValidator() > %w", err)
	}
	return &NoteHandler{store: store, engine: engine, validator: v}, nil
}

// GetNote returns the note, or NotFound. Clients fall back to a fresh note themselves.
func (h *NoteHandler) GetNote(
	ctx context.Context,
	req *connect.Request[GetNoteRequest],
) (*connect.Response[GetNoteResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	n, err := h.store.LoadNote(ctx, userID, req.Msg.NoteID)
	if err != nil {
		return nil, toConnectError(err, GetNoteProcedure)
	}
	return connect.NewResponse(&GetNoteResponse{Note: n}), nil
}

// SaveNote overwrites the whole note and returns it as stored.
func (h *NoteHandler) SaveNote(
	ctx context.Context,
	req *connect.Request[SaveNoteRequest],
) (*connect.Response[SaveNoteResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	n := *req.Msg.Note
	n.ID = req.Msg.NoteID
	n.UserID = userID
	n.Normalize(h.engine)
	if err := n.RootNodes.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("rootNodes: %w", err))
	}

	if err := h.store.SaveNote(ctx, userID, n.ID, &n); err != nil {
		return nil, toConnectError(err, SaveNoteProcedure)
	}
	return connect.NewResponse(&SaveNoteResponse{Note: &n}), nil
}

func (h *NoteHandler) UpdateNoteMeta(
	ctx context.Context,
	req *connect.Request[UpdateNoteMetaRequest],
) (*connect.Response[UpdateNoteMetaResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := h.store.UpdateNoteMeta(ctx, userID, req.Msg.NoteID, req.Msg.Patch); err != nil {
		return nil, toConnectError(err, UpdateNoteMetaProcedure)
	}
	return connect.NewResponse(&UpdateNoteMetaResponse{}), nil
}

func (h *NoteHandler) DeleteNote(
	ctx context.Context,
	req *connect.Request[DeleteNoteRequest],
) (*connect.Response[DeleteNoteResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteNote(ctx, userID, req.Msg.NoteID); err != nil {
		return nil, toConnectError(err, DeleteNoteProcedure)
	}
	return connect.NewResponse(&DeleteNoteResponse{}), nil
}

func (h *NoteHandler) ListNotes(
	ctx context.Context,
	req *connect.Request[ListNotesRequest],
) (*connect.Response[ListNotesResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	notes, err := h.store.ListNotes(ctx, userID)
	if err != nil {
		return nil, toConnectError(err, ListNotesProcedure)
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return connect.NewResponse(&ListNotesResponse{Notes: notes}), nil
}

func (h *NoteHandler) ListNotebooks(
	ctx context.Context,
	req *connect.Request[ListNotebooksRequest],
) (*connect.Response[ListNotebooksResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	notebooks, err := h.store.ListNotebooks(ctx, userID)
	if err != nil {
		return nil, toConnectError(err, ListNotebooksProcedure)
	}
	if notebooks == nil {
		notebooks = []note.Notebook{}
	}
	return connect.NewResponse(&ListNotebooksResponse{Notebooks: notebooks}), nil
}

func (h *NoteHandler) CreateNotebook(
	ctx context.Context,
	req *connect.Request[CreateNotebookRequest],
) (*connect.Response[CreateNotebookResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	nb, err := h.store.CreateNotebook(ctx, userID, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err, CreateNotebookProcedure)
	}
	return connect.NewResponse(&CreateNotebookResponse{Notebook: nb}), nil
}

// DeleteNotebook removes the notebook; its notes keep their notebook id.
func (h *NoteHandler) DeleteNotebook(
	ctx context.Context,
	req *connect.Request[DeleteNotebookRequest],
) (*connect.Response[DeleteNotebookResponse], error) {
	userID, err := h.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteNotebook(ctx, userID, req.Msg.NotebookID); err != nil {
		return nil, toConnectError(err, DeleteNotebookProcedure)
	}
	return connect.NewResponse(&DeleteNotebookResponse{}), nil
}

func (h *NoteHandler) begin(ctx context.Context, msg any) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	if err := h.validator.validateRequest(msg); err != nil {
		return "", err
	}
	return userID, nil
}
