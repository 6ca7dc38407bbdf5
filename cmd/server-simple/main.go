package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iptvkit/mediakit/pkg/mediakit"
	"github.com/iptvkit/mediakit/pkg/mediakit/api"
	"github.com/iptvkit/mediakit/pkg/mediakit/docstore"
	ledgermemory "github.com/iptvkit/mediakit/pkg/mediakit/ledger/memory"
	memorystorage "github.com/iptvkit/mediakit/pkg/mediakit/storage/memory"
)

// Development server: in-memory storage and ledger, no transcoder, no
// database setup required. Only the Document API must be reachable.
func main() {
	files := memorystorage.New()
	videos := memorystorage.NewWithPrefix("/videos/")

	svc, err := mediakit.New(
		mediakit.WithFileStore(files),
		mediakit.WithVideoStore(videos),
		mediakit.WithLedger(ledgermemory.New()),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	docURL := os.Getenv("DOCUMENT_API_URL")
	if docURL == "" {
		docURL = "http://localhost:3000"
	}
	database := os.Getenv("DOCUMENT_DATABASE")
	if database == "" {
		database = "iptv"
	}
	docs, err := docstore.New(docstore.Config{BaseURL: docURL, Database: database})
	if err != nil {
		log.Fatalf("Failed to create document client: %v", err)
	}

	handler := api.NewHandler(svc, docs, nil)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: routes(handler),
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func routes(handler *api.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Mount("/api/v1", handler.Routes())

	return r
}
