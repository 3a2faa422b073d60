package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"helpline-responder/internal/domain"
	"helpline-responder/internal/metrics"
	"helpline-responder/internal/signature"
	"helpline-responder/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// Verifier is satisfied by *signature.Verifier.
type Verifier interface {
	Verify(body []byte, header string) error
}

// EventDispatcher is satisfied by *usecase.Dispatcher.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []domain.InboundEvent)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler is the webhook boundary: GET answers the subscription challenge,
// POST ingests a batch of messaging events.
type Handler struct {
	verifier    Verifier
	dispatcher  EventDispatcher
	verifyToken string
	logger      *slog.Logger
}

func NewHandler(v Verifier, d EventDispatcher, verifyToken string, logger *slog.Logger) (*Handler, error) {
	if v == nil {
		return nil, errors.New("handler: verifier must not be nil")
	}
	if d == nil {
		return nil, errors.New("handler: dispatcher must not be nil")
	}
	if strings.TrimSpace(verifyToken) == "" {
		return nil, errors.New("handler: verify token must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{verifier: v, dispatcher: d, verifyToken: verifyToken, logger: logger}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := headerValue(req.Headers, correlationHeader)
	if corrID == "" {
		corrID = uuid.NewString()
	}
	logger := h.logger.With("correlation_id", corrID)

	var resp events.APIGatewayProxyResponse
	switch req.HTTPMethod {
	case http.MethodGet:
		resp = h.challenge(logger, req.QueryStringParameters)
	case http.MethodPost:
		resp = h.ingest(ctx, logger, req)
	default:
		resp = textResponse(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	}
	resp.Headers[correlationHeader] = corrID
	return resp, nil
}

func (h *Handler) challenge(logger *slog.Logger, q map[string]string) events.APIGatewayProxyResponse {
	if q["hub.mode"] == "subscribe" && q["hub.verify_token"] == h.verifyToken {
		logger.Info("validating webhook")
		metrics.WebhookRequests.WithLabelValues("challenge", "ok").Inc()
		return textResponse(http.StatusOK, q["hub.challenge"])
	}
	logger.Error("failed validation; make sure the validation tokens match")
	metrics.WebhookRequests.WithLabelValues("challenge", "forbidden").Inc()
	return textResponse(http.StatusForbidden, http.StatusText(http.StatusForbidden))
}

func (h *Handler) ingest(ctx context.Context, logger *slog.Logger, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			logger.Warn("webhook body is not valid base64", "code", usecase.ErrorValidation, "err", err)
			metrics.WebhookRequests.WithLabelValues("event", "invalid").Inc()
			return textResponse(http.StatusOK, "EVENT_RECEIVED")
		}
		body = decoded
	}

	if err := h.verifier.Verify(body, signatureHeader(req.Headers)); err != nil {
		logger.Error("webhook signature rejected", "code", usecase.CodeOf(err), "err", err)
		metrics.WebhookRequests.WithLabelValues("event", "unauthorized").Inc()
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorAuth)})
	}

	evs, err := domain.ParseWebhook(body)
	if err != nil {
		// Still acknowledged so the platform does not redeliver a payload we cannot use.
		logger.Warn("webhook payload rejected", "code", usecase.ErrorValidation, "err", err)
		metrics.WebhookRequests.WithLabelValues("event", "invalid").Inc()
		return textResponse(http.StatusOK, "EVENT_RECEIVED")
	}

	logger.Debug("webhook batch accepted", "events", len(evs))
	h.dispatcher.Dispatch(ctx, evs)
	metrics.WebhookRequests.WithLabelValues("event", "ok").Inc()
	return textResponse(http.StatusOK, "EVENT_RECEIVED")
}

// signatureHeader prefers the SHA-256 header when the platform sends both.
func signatureHeader(headers map[string]string) string {
	if v := headerValue(headers, signature.HeaderSHA256); v != "" {
		return v
	}
	return headerValue(headers, signature.HeaderSHA1)
}

func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	raw, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}
