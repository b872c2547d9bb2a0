package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/outliner/internal/bootstrap"
	"github.com/at-ishikawa/outliner/internal/config"
	"github.com/at-ishikawa/outliner/internal/database"
	"github.com/at-ishikawa/outliner/internal/editor"
	"github.com/at-ishikawa/outliner/internal/inference"
	"github.com/at-ishikawa/outliner/internal/inference/openai"
	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/server"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "outliner-server",
		Short:         "Outliner note and assistant HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	var db *sqlx.DB
	if cfg.Store.Driver == config.StoreDriverMySQL {
		if db, err = database.Open(cfg.Database); err != nil {
			return fmt.Errorf("database.Open() > %w", err)
		}
		app.AddShutdownHook("database", func(context.Context) error {
			return db.Close()
		})
	}

	engine := editor.NewEngine()
	store, err := note.NewRepository(cfg.Store, db, engine)
	if err != nil {
		return fmt.Errorf("note.NewRepository() > %w", err)
	}

	if cfg.OpenAI.APIKey == "" {
		slog.Default().Warn("OPENAI_API_KEY is not set, assistant requests will fail")
	}
	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, inference.DefaultMaxRetryAttempts)
	app.AddShutdownHook("openai client", func(context.Context) error {
		return openaiClient.Close()
	})

	notes, err := server.NewNoteHandler(store, engine)
	if err != nil {
		return fmt.Errorf("server.NewNoteHandler() > %w", err)
	}
	assistant, err := server.NewAssistantHandler(openaiClient)
	if err != nil {
		return fmt.Errorf("server.NewAssistantHandler() > %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsMiddleware(h2c.NewHandler(server.NewMux(notes, assistant), &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, "+server.UserIDHeader)
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
