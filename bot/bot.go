// Package bot translates chat updates into service calls. It owns the
// command routing, the inline-keyboard callback grammar and the multi-step
// dialogs (team registration, result entry, broadcast).
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/services"
)

type Bot struct {
	chatClient chat.Client
	sessions   SessionStore
	logger     *slog.Logger

	users        *services.UserService
	tournaments  *services.TournamentService
	teams        *services.TeamService
	registration *services.RegistrationService
	brackets     *services.BracketService
	sync         *services.SyncService
	results      *services.ResultService
	broadcast    *services.BroadcastService
}

type Services struct {
	Users        *services.UserService
	Tournaments  *services.TournamentService
	Teams        *services.TeamService
	Registration *services.RegistrationService
	Brackets     *services.BracketService
	Sync         *services.SyncService
	Results      *services.ResultService
	Broadcast    *services.BroadcastService
}

func New(chatClient chat.Client, sessions SessionStore, svc Services, logger *slog.Logger) *Bot {
	return &Bot{
		chatClient:   chatClient,
		sessions:     sessions,
		logger:       logger,
		users:        svc.Users,
		tournaments:  svc.Tournaments,
		teams:        svc.Teams,
		registration: svc.Registration,
		brackets:     svc.Brackets,
		sync:         svc.Sync,
		results:      svc.Results,
		broadcast:    svc.Broadcast,
	}
}

// HandleUpdate is the single entry point for inbound webhook events.
// Errors are reported to the user and logged, never returned to the
// transport: the platform retries on non-200 and we do not want replays.
func (b *Bot) HandleUpdate(ctx context.Context, update chat.Update) {
	switch {
	case update.Callback != nil:
		b.handleCallback(ctx, update.Callback)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *chat.IncomingMessage) {
	user, err := b.ensureSender(ctx, msg.ChatID, msg.From)
	if err != nil || user == nil {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		// A command always aborts whatever dialog was in flight.
		b.sessions.Delete(msg.ChatID, msg.From.ID)
		b.handleCommand(ctx, user, msg)
		return
	}

	if session, ok := b.sessions.Get(msg.ChatID, msg.From.ID); ok {
		b.continueDialog(ctx, user, msg, session)
		return
	}

	b.reply(ctx, msg.ChatID, "Не понимаю. Команды: /tournaments — список турниров, /help — справка.")
}

func (b *Bot) handleCommand(ctx context.Context, user *models.User, msg *chat.IncomingMessage) {
	command, _, _ := strings.Cut(msg.Text, " ")
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/start":
		b.reply(ctx, msg.ChatID,
			"👋 Привет! Я бот киберспортивных турниров.\n"+
				"/tournaments — открытые турниры\n/help — справка")
	case "/help":
		b.sendHelp(ctx, user, msg.ChatID)
	case "/tournaments":
		b.sendTournamentList(ctx, msg.ChatID)
	case "/admin":
		if !user.IsAdmin() {
			b.reply(ctx, msg.ChatID, "Команда доступна только администраторам.")
			return
		}
		b.sendAdminMenu(ctx, msg.ChatID)
	case "/broadcast":
		if !user.IsAdmin() {
			b.reply(ctx, msg.ChatID, "Команда доступна только администраторам.")
			return
		}
		b.sessions.Put(msg.ChatID, msg.From.ID, Session{State: StateAwaitBroadcast})
		b.reply(ctx, msg.ChatID, "Отправьте текст рассылки одним сообщением. /cancel — отмена.")
	case "/cancel":
		b.reply(ctx, msg.ChatID, "Действие отменено.")
	default:
		b.reply(ctx, msg.ChatID, "Неизвестная команда. /help — справка.")
	}
}

func (b *Bot) continueDialog(ctx context.Context, user *models.User, msg *chat.IncomingMessage, session Session) {
	switch session.State {
	case StateAwaitTeamName:
		b.finishRegistration(ctx, user, msg, session)
	case StateAwaitT1Score, StateAwaitT2Score:
		b.continueResultEntry(ctx, user, msg, session)
	case StateAwaitBroadcast:
		b.finishBroadcast(ctx, user, msg)
	default:
		b.sessions.Delete(msg.ChatID, msg.From.ID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *chat.CallbackQuery) {
	user, err := b.ensureSender(ctx, cb.ChatID, cb.From)
	if err != nil || user == nil {
		return
	}

	parsed, err := ParseCallback(cb.Data)
	if err != nil {
		b.logger.Warn("unparseable callback", slog.String("data", cb.Data))
		b.answer(ctx, cb.ID, "")
		return
	}

	switch parsed.Namespace {
	case "register_team":
		b.startRegistration(ctx, user, cb, parsed)
	case "admin":
		if !user.IsAdmin() {
			b.answer(ctx, cb.ID, "Недостаточно прав")
			return
		}
		b.handleAdminCallback(ctx, user, cb, parsed)
	default:
		b.answer(ctx, cb.ID, "")
	}
}

// ensureSender upserts the user and enforces the global block. A nil user
// with nil error means the sender is blocked and was ignored.
func (b *Bot) ensureSender(ctx context.Context, chatID int64, from chat.Sender) (*models.User, error) {
	name := from.Username
	if name == "" {
		name = from.FirstName
	}
	user, err := b.users.EnsureUser(ctx, from.ID, name)
	if err != nil {
		b.logger.Error("failed to resolve user",
			slog.Int64("external_id", from.ID), slog.Any("error", err))
		b.reply(ctx, chatID, "Внутренняя ошибка, попробуйте позже.")
		return nil, err
	}
	if user.Blocked {
		return nil, nil
	}
	return user, nil
}

func (b *Bot) sendHelp(ctx context.Context, user *models.User, chatID int64) {
	text := "📖 <b>Команды</b>\n" +
		"/tournaments — открытые турниры\n" +
		"/cancel — прервать текущее действие"
	if user.IsAdmin() {
		text += "\n\n<b>Администрирование</b>\n/admin — панель управления\n/broadcast — рассылка всем пользователям"
	}
	b.reply(ctx, chatID, text)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, chat.Message{ChatID: chatID, Text: text})
}

func (b *Bot) send(ctx context.Context, msg chat.Message) {
	if err := b.chatClient.SendMessage(ctx, msg); err != nil {
		b.logger.Warn("failed to send message",
			slog.Int64("chat_id", msg.ChatID), slog.Any("error", err))
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if err := b.chatClient.AnswerCallback(ctx, callbackID, text); err != nil {
		b.logger.Warn("failed to answer callback", slog.Any("error", err))
	}
}

func (b *Bot) finishBroadcast(ctx context.Context, user *models.User, msg *chat.IncomingMessage) {
	b.sessions.Delete(msg.ChatID, msg.From.ID)
	if !user.IsAdmin() {
		return
	}
	batchID, recipients, err := b.broadcast.Broadcast(ctx, msg.Text)
	if err != nil {
		b.logger.Error("broadcast failed", slog.Any("error", err))
		b.reply(ctx, msg.ChatID, "Не удалось запустить рассылку.")
		return
	}
	b.logger.Info("broadcast accepted", slog.String("batch_id", batchID))
	b.reply(ctx, msg.ChatID, fmt.Sprintf("📨 Рассылка запущена, получателей: %d.", recipients))
}
