package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pushforge/push-agent/internal/webpush"
)

const maxRequestBytes = 64 << 10 // 64 KiB; payloads are capped at 4078 bytes anyway

type handler struct {
	logger   *slog.Logger
	sender   *webpush.Sender
	validate *validator.Validate
}

type subscriptionBody struct {
	Endpoint string   `json:"endpoint" validate:"omitempty,url"`
	Keys     keysBody `json:"keys" validate:"required"`
}

type keysBody struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

func (b subscriptionBody) toSubscription() *webpush.Subscription {
	return &webpush.Subscription{
		Endpoint: b.Endpoint,
		Keys: webpush.SubscriptionKeys{
			P256dh: b.Keys.P256dh,
			Auth:   b.Keys.Auth,
		},
	}
}

type sendRequest struct {
	Subscription subscriptionBody `json:"subscription" validate:"required"`
	Message      string           `json:"message"`
}

type sendResponse struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Body       string `json:"body,omitempty"`
	Expired    bool   `json:"expired"`
}

type encryptRequest struct {
	Subscription subscriptionBody `json:"subscription" validate:"required"`
	Message      string           `json:"message" validate:"required"`
	Padding      int              `json:"padding" validate:"gte=0,lte=4078"`
}

type encryptResponse struct {
	Ciphertext      string `json:"ciphertext"`        // base64url, no padding
	Salt            string `json:"salt"`              // base64url, 16 bytes
	ServerPublicKey string `json:"server_public_key"` // base64url, 65 bytes
}

type tokenRequest struct {
	Pattern string `json:"pattern" validate:"required"`
	Token   string `json:"token" validate:"required"`
}

func (h *handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleSend(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req sendRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		return
	}

	res, err := h.sender.Send(r.Context(), req.Subscription.toSubscription(), []byte(req.Message))
	if err != nil {
		status, code := classifySendError(err)
		h.logger.Error("push send failed", "request_id", requestID, "err", err)
		writeError(w, status, code, err.Error())
		return
	}

	h.logger.Info("push sent",
		"request_id", requestID,
		"status", res.StatusCode,
		"expired", res.Expired,
	)
	writeJSON(w, http.StatusOK, sendResponse{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Body:       string(res.Body),
		Expired:    res.Expired,
	})
}

func (h *handler) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req encryptRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		return
	}

	res, err := webpush.Encrypt([]byte(req.Message), req.Subscription.toSubscription(), req.Padding)
	if err != nil {
		status, code := classifySendError(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, encryptResponse{
		Ciphertext:      base64.RawURLEncoding.EncodeToString(res.Ciphertext),
		Salt:            base64.RawURLEncoding.EncodeToString(res.Salt),
		ServerPublicKey: base64.RawURLEncoding.EncodeToString(res.ServerPublicKey),
	})
}

func (h *handler) handleRegisterToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		return
	}

	h.sender.RegisterAuthToken(req.Pattern, req.Token)
	h.logger.Info("auth token registered", "pattern", req.Pattern)
	writeJSON(w, http.StatusCreated, map[string]string{"pattern": req.Pattern})
}

// decodeAndValidate parses the JSON body into dst and runs struct validation,
// writing the error response itself on failure.
func (h *handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return err
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return err
	}
	return nil
}

func classifySendError(err error) (status int, code string) {
	switch {
	case errors.Is(err, webpush.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, webpush.ErrMissingMessage):
		return http.StatusBadRequest, "missing_message"
	case errors.Is(err, webpush.ErrMissingEndpoint):
		return http.StatusBadRequest, "missing_endpoint"
	case errors.Is(err, webpush.ErrMissingEncryptionKeys):
		return http.StatusBadRequest, "missing_encryption_keys"
	case errors.Is(err, webpush.ErrInvalidAuthTokenLength):
		return http.StatusBadRequest, "invalid_auth_secret"
	case errors.Is(err, webpush.ErrInvalidClientKey):
		return http.StatusBadRequest, "invalid_client_key"
	case errors.Is(err, webpush.ErrMissingAuthToken):
		return http.StatusBadRequest, "missing_auth_token"
	default:
		return http.StatusBadGateway, "delivery_failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
