package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gitshopapp/emailnorm/internal/normalize"
	"github.com/gitshopapp/emailnorm/internal/providers"
	"github.com/gitshopapp/emailnorm/internal/services"
)

// optionsRequest overrides DefaultOptions field by field; nil keeps the
// default.
type optionsRequest struct {
	CaseInsensitiveLocal        *bool `json:"case_insensitive_local"`
	AggressiveSubaddressRemoval *bool `json:"aggressive_subaddress_removal"`
	InternationalizedDomain     *bool `json:"internationalized_domain"`
	ValidateEmail               *bool `json:"validate_email"`
}

func (o *optionsRequest) toOptions() normalize.Options {
	opts := normalize.DefaultOptions()
	if o == nil {
		return opts
	}
	if o.CaseInsensitiveLocal != nil {
		opts.CaseInsensitiveLocal = *o.CaseInsensitiveLocal
	}
	if o.AggressiveSubaddressRemoval != nil {
		opts.AggressiveSubaddressRemoval = *o.AggressiveSubaddressRemoval
	}
	if o.InternationalizedDomain != nil {
		opts.InternationalizedDomain = *o.InternationalizedDomain
	}
	if o.ValidateEmail != nil {
		opts.ValidateEmail = *o.ValidateEmail
	}
	return opts
}

type normalizeRequest struct {
	Email   string          `json:"email"`
	Options *optionsRequest `json:"options"`
}

type normalizeResponse struct {
	Email      string `json:"email"`
	Normalized string `json:"normalized"`
}

type batchRequest struct {
	Emails  []string        `json:"emails"`
	Options *optionsRequest `json:"options"`
}

type batchResponse struct {
	Results []services.BatchResult `json:"results"`
}

type providersResponse struct {
	Providers []providers.Entry `json:"providers"`
}

// Normalize handles POST /v1/normalize.
func (h *Handlers) Normalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	normalized, err := h.normalizeService.Normalize(r.Context(), req.Email, req.Options.toOptions())
	if err != nil {
		h.writeNormalizeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, normalizeResponse{Email: req.Email, Normalized: normalized})
}

// NormalizeBatch handles POST /v1/normalize/batch.
func (h *Handlers) NormalizeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	if len(req.Emails) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "emails is required", "")
		return
	}
	if limit := h.config.MaxBatchSize; limit > 0 && len(req.Emails) > limit {
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("batch exceeds %d emails", limit), "")
		return
	}

	results, err := h.normalizeService.NormalizeBatch(r.Context(), req.Emails, req.Options.toOptions())
	if err != nil {
		h.writeNormalizeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, batchResponse{Results: results})
}

// Providers handles GET /v1/providers.
func (h *Handlers) Providers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, providersResponse{Providers: h.normalizeService.Rules().Entries()})
}

func (h *Handlers) writeNormalizeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := normalize.Kind(err)
	switch kind {
	case normalize.KindConfiguration:
		h.writeError(w, r, http.StatusBadRequest, err.Error(), kind)
	case normalize.KindMalformedAddress, normalize.KindInvalidAddress, normalize.KindDomainEncoding:
		h.writeError(w, r, http.StatusUnprocessableEntity, err.Error(), kind)
	default:
		if errors.Is(err, r.Context().Err()) {
			h.loggerFromContext(r.Context()).Warn("request canceled", "error", err)
			return
		}
		h.loggerFromContext(r.Context()).Error("normalization failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "internal error", "")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("content type must be application/json")
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
