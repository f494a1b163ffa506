package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/pushforge/push-agent/internal/config"
	"github.com/pushforge/push-agent/internal/webpush"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("config error", "err", err)
		os.Exit(1)
	}

	opts := []webpush.SenderOption{
		webpush.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		webpush.WithTTL(cfg.TTL),
	}
	if cfg.VAPIDMnemonic != "" {
		key, err := webpush.VAPIDKeyFromMnemonic(cfg.VAPIDMnemonic)
		if err != nil {
			logger.Error("vapid key derivation error", "err", err)
			os.Exit(1)
		}
		vapid, err := webpush.NewVAPID(key, cfg.VAPIDSubject)
		if err != nil {
			logger.Error("vapid setup error", "err", err)
			os.Exit(1)
		}
		pub, err := vapid.PublicKey()
		if err != nil {
			logger.Error("vapid setup error", "err", err)
			os.Exit(1)
		}
		logger.Info("vapid identity ready", "application_server_key", pub)
		opts = append(opts, webpush.WithVAPID(vapid))
	}

	sender := webpush.NewSender(opts...)
	if cfg.GCMAPIKey != "" {
		sender.RegisterAuthToken("https://android.googleapis.com/gcm/send", cfg.GCMAPIKey)
	}

	h := &handler{
		logger:   logger,
		sender:   sender,
		validate: validator.New(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/send", h.handleSend).Methods(http.MethodPost)
	r.HandleFunc("/v1/encrypt", h.handleEncrypt).Methods(http.MethodPost)
	r.HandleFunc("/v1/tokens", h.handleRegisterToken).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("push-agent listening", "addr", cfg.ListenAddr, "ttl", cfg.TTL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
