package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"semchunk/pkg/chunking"
	"semchunk/pkg/embedding"
	"semchunk/pkg/errs"

	"go.uber.org/zap"
)

const (
	ModeSemantic = "semantic"
	ModeQuick    = "quick"
	// ModeRecursive splits on paragraph, line and word separators.
	ModeRecursive = "recursive"

	maxRequestBytes = 10 << 20
)

// Chunker is the part of the semantic chunker the handlers use.
type Chunker interface {
	Chunk(ctx context.Context, text string, maxChunkSize int) ([]chunking.Chunk, error)
	QuickChunk(text string, maxChunkSize int) ([]chunking.Chunk, error)
	ListModels(ctx context.Context) ([]embedding.Model, error)
	TestConnection(ctx context.Context) bool
	Settings() chunking.Settings
}

type ChunkRequest struct {
	Text         string `json:"text"`
	MaxChunkSize *int   `json:"max_chunk_size,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Overlap      int    `json:"overlap,omitempty"`
}

type ChunkResponse struct {
	Chunks     []chunking.Chunk   `json:"chunks"`
	Embeddings []embedding.Vector `json:"embeddings"`
}

type ModelsResponse struct {
	Models []embedding.Model `json:"models"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	chunker Chunker
	logger  *zap.Logger
}

func (h *handlers) chunk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req ChunkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, errs.Validation("body", "%v", err))
		return
	}

	maxChunkSize := h.chunker.Settings().MaxChunkSize
	if req.MaxChunkSize != nil {
		maxChunkSize = *req.MaxChunkSize
	}

	var (
		chunks []chunking.Chunk
		err    error
	)
	switch req.Mode {
	case "", ModeSemantic:
		chunks, err = h.chunker.Chunk(r.Context(), req.Text, maxChunkSize)
	case ModeQuick:
		chunks, err = h.chunker.QuickChunk(req.Text, maxChunkSize)
	case ModeRecursive:
		chunks, err = chunking.RecursiveChunk(req.Text, maxChunkSize, req.Overlap)
	default:
		err = errs.Validation("mode", "must be %q, %q or %q, got %q", ModeSemantic, ModeQuick, ModeRecursive, req.Mode)
	}
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	embeddings := []embedding.Vector{}
	if req.Mode == "" || req.Mode == ModeSemantic {
		embeddings = chunking.Embeddings(chunks)
	}
	h.writeJSON(w, http.StatusOK, ChunkResponse{Chunks: chunks, Embeddings: embeddings})
}

func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	models, err := h.chunker.ListModels(r.Context())
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ModelsResponse{Models: models})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), embedding.ProbeTimeout)
	defer cancel()

	if !h.chunker.TestConnection(ctx) {
		http.Error(w, "embedding service unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func statusFor(err error) int {
	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *handlers) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Info("request failed", zap.Int("status", status), zap.Error(err))
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(started)))
	})
}
