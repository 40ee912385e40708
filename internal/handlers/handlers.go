package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gitshopapp/emailnorm/internal/config"
	"github.com/gitshopapp/emailnorm/internal/logging"
	"github.com/gitshopapp/emailnorm/internal/services"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// Handlers provides the HTTP API for email normalization.
type Handlers struct {
	config           *config.Config
	normalizeService *services.NormalizeService
	logger           *slog.Logger
}

type Dependencies struct {
	Config           *config.Config
	NormalizeService *services.NormalizeService
	Logger           *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.NormalizeService == nil {
		return nil, fmt.Errorf("handlers dependencies: normalizeService is required")
	}

	return &Handlers{
		config:           deps.Config,
		normalizeService: deps.NormalizeService,
		logger:           logger,
	}, nil
}

// Health reports liveness. The service has no external dependency that
// must be reachable to normalize.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, message, kind string) {
	h.writeJSON(w, r, status, errorResponse{Error: message, Kind: kind})
}
