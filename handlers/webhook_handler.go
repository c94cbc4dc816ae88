package handlers

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cyberarena/tournament-bot/bot"
	"github.com/cyberarena/tournament-bot/chat"
)

// WebhookHandler receives chat-platform updates. The bot token doubles as
// the webhook path secret.
type WebhookHandler struct {
	bot    *bot.Bot
	token  string
	logger *slog.Logger
}

func NewWebhookHandler(b *bot.Bot, token string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{bot: b, token: token, logger: logger}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_576))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "unreadable body")
		return
	}

	update, err := chat.ParseUpdate(body)
	if err != nil {
		h.logger.Warn("malformed webhook update", slog.Any("error", err))
		// 200 anyway: the platform retries non-2xx and the payload will
		// not get any better.
		w.WriteHeader(http.StatusOK)
		return
	}

	h.bot.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}
