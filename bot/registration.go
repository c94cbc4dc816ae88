package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
	"github.com/cyberarena/tournament-bot/services"
	"github.com/cyberarena/tournament-bot/utils"
)

func (b *Bot) sendTournamentList(ctx context.Context, chatID int64) {
	status := models.StatusRegistration
	tournaments, err := b.tournaments.List(ctx, repositories.ListTournamentsFilter{Status: &status})
	if err != nil {
		b.logger.Error("failed to list tournaments", slog.Any("error", err))
		b.reply(ctx, chatID, "Не удалось загрузить список турниров.")
		return
	}
	if len(tournaments) == 0 {
		b.reply(ctx, chatID, "Сейчас нет турниров с открытой регистрацией.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 <b>Открытые турниры</b>\n")
	keyboard := make([][]chat.Button, 0, len(tournaments))
	for _, t := range tournaments {
		fmt.Fprintf(&sb, "\n<b>%s</b>\nРегистрация до %s\n",
			utils.EscapeHTML(t.Name), t.RegEnd.Format("02.01.2006 15:04"))
		keyboard = append(keyboard, []chat.Button{{
			Text:         "Зарегистрировать команду: " + t.Name,
			CallbackData: registerCallback(t.ID),
		}})
	}
	b.send(ctx, chat.Message{ChatID: chatID, Text: sb.String(), Keyboard: keyboard})
}

func (b *Bot) startRegistration(ctx context.Context, user *models.User, cb *chat.CallbackQuery, parsed Callback) {
	if !parsed.HasArg {
		b.answer(ctx, cb.ID, "")
		return
	}
	b.sessions.Put(cb.ChatID, cb.From.ID, Session{
		State:        StateAwaitTeamName,
		TournamentID: parsed.Arg,
	})
	b.answer(ctx, cb.ID, "")
	b.reply(ctx, cb.ChatID, "Введите название команды (3–50 символов). /cancel — отмена.")
}

func (b *Bot) finishRegistration(ctx context.Context, user *models.User, msg *chat.IncomingMessage, session Session) {
	team, err := b.registration.RegisterTeam(ctx, user, session.TournamentID, msg.Text)
	if err != nil {
		b.reply(ctx, msg.ChatID, registrationErrorText(err))
		// The dialog stays open for retryable input errors.
		if services.AsValidation(err) != nil {
			return
		}
		var unsub *services.UnsubscribedError
		if errors.As(err, &unsub) {
			b.sendSubscriptionPrompt(ctx, msg.ChatID, unsub.Channels)
			return
		}
		b.sessions.Delete(msg.ChatID, msg.From.ID)
		return
	}

	b.sessions.Delete(msg.ChatID, msg.From.ID)
	b.reply(ctx, msg.ChatID, fmt.Sprintf(
		"✅ Команда <b>%s</b> зарегистрирована и ожидает подтверждения администратора.",
		utils.EscapeHTML(team.Name)))
}

// sendSubscriptionPrompt lists the unfulfilled channel requirements with
// join links.
func (b *Bot) sendSubscriptionPrompt(ctx context.Context, chatID int64, channels []string) {
	keyboard := make([][]chat.Button, 0, len(channels))
	for _, ch := range channels {
		keyboard = append(keyboard, []chat.Button{{
			Text: ch,
			URL:  "https://t.me/" + strings.TrimPrefix(ch, "@"),
		}})
	}
	b.send(ctx, chat.Message{
		ChatID:   chatID,
		Text:     "Подпишитесь на каналы ниже и отправьте название команды ещё раз.",
		Keyboard: keyboard,
	})
}

func registrationErrorText(err error) string {
	if ve := services.AsValidation(err); ve != nil {
		switch ve.Kind {
		case services.ValidationEmptyName:
			return "Название команды не может быть пустым."
		case services.ValidationReservedName:
			return "Это название зарезервировано за известной организацией. Выберите другое."
		case services.ValidationNameTooShort:
			return "Название слишком короткое: нужно не меньше 3 символов."
		case services.ValidationNameTooLong:
			return "Название слишком длинное: не больше 50 символов."
		case services.ValidationInvalidChars:
			return "Недопустимые символы в названии: " + utils.EscapeHTML(ve.Detail)
		case services.ValidationInsufficientLetters:
			return "В названии должно быть хотя бы две буквы."
		default:
			return "Название не прошло проверку. Попробуйте другое."
		}
	}

	var unsub *services.UnsubscribedError
	switch {
	case errors.As(err, &unsub):
		return "❗ Для участия нужна подписка на каналы турнира."
	case errors.Is(err, services.ErrRegistrationNotOpen):
		return "Регистрация на этот турнир сейчас закрыта."
	case errors.Is(err, services.ErrRegistrationWindowClosed):
		return "Окно регистрации уже закрылось."
	case errors.Is(err, services.ErrTournamentFull):
		return "Свободных слотов не осталось."
	case errors.Is(err, services.ErrCaptainAlreadyRegistered):
		return "У вас уже есть команда в этом турнире."
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return "Команда с таким названием уже зарегистрирована в турнире."
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return "Турнир не найден."
	default:
		return "Не удалось зарегистрировать команду, попробуйте позже."
	}
}
