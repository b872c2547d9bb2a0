package server

import (
	"net/http"

	"connectrpc.com/connect"
)

const (
	NoteServiceName      = "outliner.v1.NoteService"
	AssistantServiceName = "outliner.v1.AssistantService"
)

const (
	GetNoteProcedure        = "/" + NoteServiceName + "/GetNote"
	SaveNoteProcedure       = "/" + NoteServiceName + "/SaveNote"
	UpdateNoteMetaProcedure = "/" + NoteServiceName + "/UpdateNoteMeta"
	DeleteNoteProcedure     = "/" + NoteServiceName + "/DeleteNote"
	ListNotesProcedure      = "/" + NoteServiceName + "/ListNotes"
	ListNotebooksProcedure  = "/" + NoteServiceName + "/ListNotebooks"
	CreateNotebookProcedure = "/" + NoteServiceName + "/CreateNotebook"
	DeleteNotebookProcedure = "/" + NoteServiceName + "/DeleteNotebook"
	CompleteProcedure       = "/" + AssistantServiceName + "/Complete"
)

// Options returns the codec and interceptors shared by every handler.
func Options() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(NewUserInterceptor()),
	}
}

// ClientOptions returns the options a Go client needs to talk to these handlers.
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{connect.WithCodec(jsonCodec{})}
}

// NewNoteServiceHandler builds an HTTP handler from the service implementation. It returns
// the path on which to mount the handler and the handler itself.
func NewNoteServiceHandler(h *NoteHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(Options(), opts...)
	mux := http.NewServeMux()
	mux.Handle(GetNoteProcedure, connect.NewUnaryHandler(GetNoteProcedure, h.GetNote, opts...))
	mux.Handle(SaveNoteProcedure, connect.NewUnaryHandler(SaveNoteProcedure, h.SaveNote, opts...))
	mux.Handle(UpdateNoteMetaProcedure, connect.NewUnaryHandler(UpdateNoteMetaProcedure, h.UpdateNoteMeta, opts...))
	mux.Handle(DeleteNoteProcedure, connect.NewUnaryHandler(DeleteNoteProcedure, h.DeleteNote, opts...))
	mux.Handle(ListNotesProcedure, connect.NewUnaryHandler(ListNotesProcedure, h.ListNotes, opts...))
	mux.Handle(ListNotebooksProcedure, connect.NewUnaryHandler(ListNotebooksProcedure, h.ListNotebooks, opts...))
	mux.Handle(CreateNotebookProcedure, connect.NewUnaryHandler(CreateNotebookProcedure, h.CreateNotebook, opts...))
	mux.Handle(DeleteNotebookProcedure, connect.NewUnaryHandler(DeleteNotebookProcedure, h.DeleteNotebook, opts...))
	return "/" + NoteServiceName + "/", mux
}

func NewAssistantServiceHandler(h *AssistantHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(Options(), opts...)
	return CompleteProcedure, connect.NewUnaryHandler(CompleteProcedure, h.Complete, opts...)
}

// NewMux mounts both services.
func NewMux(notes *NoteHandler, assistant *AssistantHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(NewNoteServiceHandler(notes))
	mux.Handle(NewAssistantServiceHandler(assistant))
	return mux
}
