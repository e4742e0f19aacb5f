package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/telhawk-systems/logrelay/internal/logging"
	"github.com/telhawk-systems/logrelay/internal/metrics"
	"github.com/telhawk-systems/logrelay/internal/models"
	"github.com/telhawk-systems/logrelay/internal/ratelimit"
	"github.com/telhawk-systems/logrelay/internal/signature"
	"github.com/telhawk-systems/logrelay/internal/validator"
)

// Response codes in the relay response body.
const (
	CodeSuccess          = 0
	CodeInvalidMethod    = 1
	CodeUnsupportedMedia = 2
	CodeUnauthorized     = 3
	CodeInvalidEvent     = 4
	CodeUpstreamFailure  = 5
	CodeRateLimited      = 6
)

// Relayer forwards one validated event downstream.
type Relayer interface {
	Relay(ctx context.Context, event *models.Event, raw []byte) error
}

// EventHandler drives one request through the relay pipeline: method check,
// content-type check, optional signature check, parse/validate, forward.
// Nothing persists across requests.
type EventHandler struct {
	relayer      Relayer
	sharedSecret string
	limiter      ratelimit.RateLimiter
	log          *logging.Logger
	maxEventSize int64
}

func NewEventHandler(relayer Relayer, sharedSecret string, limiter ratelimit.RateLimiter, log *logging.Logger, maxEventSize int64) *EventHandler {
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	return &EventHandler{
		relayer:      relayer,
		sharedSecret: sharedSecret,
		limiter:      limiter,
		log:          log,
		maxEventSize: maxEventSize,
	}
}

func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, CodeInvalidMethod, "method not allowed")
		return
	}

	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "application/json") {
		h.sendError(w, http.StatusUnsupportedMediaType, CodeUnsupportedMedia, "content type must be application/json")
		return
	}

	clientIP := getClientIP(r)
	allowed, err := h.limiter.Allow(ctx, clientIP)
	if err != nil {
		// Fail open: a limiter outage must not take ingestion down with it.
		h.log.WarnContext(ctx, "rate limiter unavailable", "error", err)
	} else if !allowed {
		h.sendError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxEventSize))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, CodeInvalidEvent, "unable to read request body")
		return
	}
	defer r.Body.Close()
	metrics.EventBytesTotal.Add(float64(len(body)))

	if !signature.Verify(body, r.Header.Get(signature.Header), h.sharedSecret) {
		metrics.SignatureFailures.Inc()
		h.sendError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid payload signature")
		return
	}

	event, err := validator.Validate(body)
	if err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			metrics.ValidationErrors.WithLabelValues(verr.Kind).Inc()
		}
		h.sendError(w, http.StatusBadRequest, CodeInvalidEvent, err.Error())
		return
	}

	if err := h.relayer.Relay(ctx, event, body); err != nil {
		// The failure detail is logged server-side; the response carries a
		// short summary with no payload or credential material.
		h.log.ErrorContext(ctx, "relay failed", "error", err, "client_ip", clientIP)
		h.sendError(w, http.StatusBadGateway, CodeUpstreamFailure, "downstream write failed")
		return
	}

	h.sendSuccess(w)
}

// Health reports liveness.
func (h *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// Ready reports readiness to accept events.
func (h *EventHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func (h *EventHandler) sendSuccess(w http.ResponseWriter) {
	metrics.EventsTotal.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.RelayResponse{
		Text: "Success",
		Code: CodeSuccess,
	})
}

func (h *EventHandler) sendError(w http.ResponseWriter, httpStatus, code int, text string) {
	metrics.EventsTotal.WithLabelValues(strconv.Itoa(httpStatus)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(models.RelayResponse{
		Text: text,
		Code: code,
	})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
