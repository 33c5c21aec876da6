package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// RelayService is the application surface the handlers call.
type RelayService interface {
	EnqueueMessage(ctx context.Context, recipient, text, credential string) (*domain.BufferEntry, error)
	CreateConfig(ctx context.Context, cfg domain.GatewayConfig) (*domain.GatewayConfig, error)
	CreateTemplateText(ctx context.Context, text string) (*domain.TemplateText, error)
}

type RelayHandler struct {
	service  RelayService
	logger   *slog.Logger
	validate *validator.Validate
}

func NewRelayHandler(service RelayService, logger *slog.Logger, validate *validator.Validate) *RelayHandler {
	return &RelayHandler{
		service:  service,
		logger:   logger.With("handler", "relay"),
		validate: validate,
	}
}

// RegisterRoutes registers the relay routes with the given router.
func (h *RelayHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleWelcome)
	r.Post("/send_sms", h.handleSendSMS)
	r.Post("/config", h.handleCreateConfig)
	r.Post("/textsms", h.handleCreateTemplateText)
}

func (h *RelayHandler) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the SMS service!"})
}

func (h *RelayHandler) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req SendSMSRequest
	if !h.decodeAndValidate(w, r, logger, &req) {
		sendRequestsTotal.WithLabelValues("invalid").Inc()
		return
	}

	entry, err := h.service.EnqueueMessage(ctx, req.Recipient, req.Text, req.Password)
	if err != nil {
		sendRequestsTotal.WithLabelValues("failed").Inc()
		logger.ErrorContext(ctx, "Failed to buffer message", "recipient", req.Recipient, "error", err)
		h.jsonError(w, logger, "Failed to queue message", http.StatusInternalServerError)
		return
	}

	sendRequestsTotal.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusAccepted, SendSMSResponse{
		Message: "SMS has been added to the send queue",
		EntryID: entry.ID,
	})
}

func (h *RelayHandler) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req CreateConfigRequest
	if !h.decodeAndValidate(w, r, logger, &req) {
		return
	}

	cfg, err := h.service.CreateConfig(ctx, req.toDomain())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create gateway configuration", "error", err)
		h.jsonError(w, logger, "Failed to create configuration", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (h *RelayHandler) handleCreateTemplateText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req CreateTemplateTextRequest
	if !h.decodeAndValidate(w, r, logger, &req) {
		return
	}

	tmpl, err := h.service.CreateTemplateText(ctx, req.Text)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create template text", "error", err)
		h.jsonError(w, logger, "Failed to create template text", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

// decodeAndValidate writes a 400 and returns false when the body is not a
// valid dst.
func (h *RelayHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(ctx, "Failed to decode request body", "path", r.URL.Path, "error", err)
		h.jsonError(w, logger, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.StructCtx(ctx, dst); err != nil {
		logger.WarnContext(ctx, "Request validation failed", "path", r.URL.Path, "error", err)
		h.jsonError(w, logger, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *RelayHandler) jsonError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logger.Error("Responding with server error", "status_code", statusCode, "message", message)
	}
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
