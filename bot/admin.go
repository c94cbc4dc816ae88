package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
	"github.com/cyberarena/tournament-bot/services"
	"github.com/cyberarena/tournament-bot/utils"
)

func (b *Bot) sendAdminMenu(ctx context.Context, chatID int64) {
	tournaments, err := b.tournaments.List(ctx, repositories.ListTournamentsFilter{})
	if err != nil {
		b.logger.Error("failed to list tournaments", slog.Any("error", err))
		b.reply(ctx, chatID, "Не удалось загрузить турниры.")
		return
	}
	if len(tournaments) == 0 {
		b.reply(ctx, chatID, "Турниров пока нет.")
		return
	}

	keyboard := make([][]chat.Button, 0, len(tournaments))
	for _, t := range tournaments {
		keyboard = append(keyboard, []chat.Button{{
			Text:         fmt.Sprintf("%s (%s)", t.Name, statusLabel(t.Status)),
			CallbackData: adminCallback("panel", t.ID),
		}})
	}
	b.send(ctx, chat.Message{ChatID: chatID, Text: "⚙️ <b>Панель администратора</b>\nВыберите турнир:", Keyboard: keyboard})
}

func (b *Bot) handleAdminCallback(ctx context.Context, user *models.User, cb *chat.CallbackQuery, parsed Callback) {
	switch parsed.Action {
	case "panel":
		b.answer(ctx, cb.ID, "")
		b.sendTournamentPanel(ctx, cb.ChatID, parsed.Arg)
	case "teams":
		b.answer(ctx, cb.ID, "")
		b.sendTeamReview(ctx, cb.ChatID, parsed.Arg)
	case "approve_team":
		b.resolveTeam(ctx, cb, parsed.Arg, true)
	case "reject_team":
		b.resolveTeam(ctx, cb, parsed.Arg, false)
	case "start":
		b.startTournament(ctx, cb, parsed.Arg)
	case "pause":
		b.changeStatus(ctx, cb, parsed.Arg, models.StatusPaused, "⏸ Турнир приостановлен.")
	case "resume":
		b.changeStatus(ctx, cb, parsed.Arg, models.StatusInProgress, "▶️ Турнир возобновлён.")
	case "complete":
		b.changeStatus(ctx, cb, parsed.Arg, models.StatusCompleted, "🏁 Турнир завершён.")
	case "sync_matches":
		b.syncMatches(ctx, cb, parsed.Arg)
	case "show_matches":
		b.answer(ctx, cb.ID, "")
		b.sendMatchList(ctx, cb.ChatID, parsed.Arg)
	case "match_view":
		b.answer(ctx, cb.ID, "")
		b.sendMatchView(ctx, cb.ChatID, parsed.Arg)
	case "enter_result":
		b.answer(ctx, cb.ID, "")
		b.sessions.Put(cb.ChatID, cb.From.ID, Session{State: StateAwaitT1Score, MatchID: parsed.Arg})
		b.reply(ctx, cb.ChatID, "Введите счёт первой команды (целое число).")
	case "confirm_result":
		b.confirmResult(ctx, cb, parsed.Arg)
	case "cancel_result":
		b.sessions.Delete(cb.ChatID, cb.From.ID)
		b.answer(ctx, cb.ID, "Отменено")
	default:
		b.answer(ctx, cb.ID, "")
	}
}

func (b *Bot) sendTournamentPanel(ctx context.Context, chatID int64, tournamentID int) {
	t, err := b.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		b.reply(ctx, chatID, "Турнир не найден.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 <b>%s</b>\nСтатус: %s\nФормат: %s\n",
		utils.EscapeHTML(t.Name), statusLabel(t.Status), string(t.Format))
	if t.RemoteURL != nil {
		fmt.Fprintf(&sb, "Сетка: %s\n", *t.RemoteURL)
	}

	keyboard := [][]chat.Button{
		{{Text: "📋 Заявки команд", CallbackData: adminCallback("teams", t.ID)}},
	}
	switch t.Status {
	case models.StatusRegistration:
		keyboard = append(keyboard,
			[]chat.Button{{Text: "🚀 Запустить турнир", CallbackData: adminCallback("start", t.ID)}})
	case models.StatusInProgress:
		keyboard = append(keyboard,
			[]chat.Button{{Text: "⚔️ Матчи", CallbackData: adminCallback("show_matches", t.ID)}},
			[]chat.Button{{Text: "🔄 Синхронизировать сетку", CallbackData: adminCallback("sync_matches", t.ID)}},
			[]chat.Button{{Text: "⏸ Пауза", CallbackData: adminCallback("pause", t.ID)}},
			[]chat.Button{{Text: "🏁 Завершить", CallbackData: adminCallback("complete", t.ID)}})
	case models.StatusPaused:
		keyboard = append(keyboard,
			[]chat.Button{{Text: "▶️ Возобновить", CallbackData: adminCallback("resume", t.ID)}})
	}
	b.send(ctx, chat.Message{ChatID: chatID, Text: sb.String(), Keyboard: keyboard})
}

func (b *Bot) sendTeamReview(ctx context.Context, chatID int64, tournamentID int) {
	pending := models.TeamStatusPending
	teams, err := b.teams.ListByTournament(ctx, tournamentID, &pending)
	if err != nil {
		b.reply(ctx, chatID, "Не удалось загрузить заявки.")
		return
	}
	if len(teams) == 0 {
		b.reply(ctx, chatID, "Заявок на рассмотрении нет.")
		return
	}

	for _, team := range teams {
		b.send(ctx, chat.Message{
			ChatID: chatID,
			Text:   fmt.Sprintf("Команда <b>%s</b> ожидает решения.", utils.EscapeHTML(team.Name)),
			Keyboard: [][]chat.Button{{
				{Text: "✅ Одобрить", CallbackData: adminCallback("approve_team", team.ID)},
				{Text: "❌ Отклонить", CallbackData: adminCallback("reject_team", team.ID)},
			}},
		})
	}
}

func (b *Bot) resolveTeam(ctx context.Context, cb *chat.CallbackQuery, teamID int, approve bool) {
	var err error
	if approve {
		err = b.teams.Approve(ctx, teamID)
	} else {
		err = b.teams.Reject(ctx, teamID, "Отклонено администратором")
	}
	if err != nil {
		b.logger.Error("team review failed",
			slog.Int("team_id", teamID), slog.Bool("approve", approve), slog.Any("error", err))
		b.answer(ctx, cb.ID, "Ошибка, попробуйте ещё раз")
		return
	}
	if approve {
		b.answer(ctx, cb.ID, "Команда одобрена")
	} else {
		b.answer(ctx, cb.ID, "Команда отклонена")
	}
}

func (b *Bot) startTournament(ctx context.Context, cb *chat.CallbackQuery, tournamentID int) {
	tournament, err := b.brackets.StartTournament(ctx, tournamentID)
	if err != nil {
		b.answer(ctx, cb.ID, "")
		b.reply(ctx, cb.ChatID, startErrorText(err))
		return
	}
	b.answer(ctx, cb.ID, "Турнир запущен")

	text := fmt.Sprintf("🚀 Турнир <b>%s</b> запущен!", utils.EscapeHTML(tournament.Name))
	if tournament.RemoteURL != nil {
		text += "\nСетка: " + *tournament.RemoteURL
	}
	b.reply(ctx, cb.ChatID, text)
}

func startErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrNotEnoughTeams):
		return "Для запуска нужно минимум две одобренные команды."
	case errors.Is(err, services.ErrTournamentInvalidStatusTransition):
		return "Турнир нельзя запустить из текущего статуса."
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return "Турнир не найден."
	default:
		return "Не удалось запустить турнир: сервис сеток недоступен. Попробуйте позже, запуск можно повторять безопасно."
	}
}

func (b *Bot) changeStatus(ctx context.Context, cb *chat.CallbackQuery, tournamentID int, target models.TournamentStatus, okText string) {
	if _, err := b.tournaments.ChangeStatus(ctx, tournamentID, target); err != nil {
		b.answer(ctx, cb.ID, "Переход статуса невозможен")
		return
	}
	b.answer(ctx, cb.ID, "")
	b.reply(ctx, cb.ChatID, okText)
}

func (b *Bot) syncMatches(ctx context.Context, cb *chat.CallbackQuery, tournamentID int) {
	matches, err := b.sync.SyncMatches(ctx, tournamentID)
	if err != nil {
		b.answer(ctx, cb.ID, "")
		if errors.Is(err, services.ErrBracketNotCreated) {
			b.reply(ctx, cb.ChatID, "Сетка ещё не создана: сначала запустите турнир.")
			return
		}
		b.reply(ctx, cb.ChatID, "Синхронизация не удалась, попробуйте позже.")
		return
	}
	b.answer(ctx, cb.ID, "Синхронизировано")
	b.reply(ctx, cb.ChatID, fmt.Sprintf("🔄 Сетка синхронизирована, матчей: %d.", len(matches)))
}

func (b *Bot) sendMatchList(ctx context.Context, chatID int64, tournamentID int) {
	// Refresh from the provider in the background; the list below renders the
	// local state so opening it never blocks on the network.
	go func() {
		_, err := b.sync.SyncMatches(context.Background(), tournamentID)
		if err != nil && !errors.Is(err, services.ErrBracketNotCreated) {
			b.logger.Warn("background bracket sync failed",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		}
	}()

	groups, err := b.sync.LocalBracket(ctx, tournamentID)
	if err != nil {
		b.reply(ctx, chatID, "Не удалось загрузить матчи.")
		return
	}
	if len(groups) == 0 {
		b.reply(ctx, chatID, "Матчей пока нет. Выполните синхронизацию сетки.")
		return
	}

	names := b.teamNames(ctx, tournamentID)
	var sb strings.Builder
	sb.WriteString("⚔️ <b>Матчи</b>\n")
	var keyboard [][]chat.Button
	for _, group := range groups {
		fmt.Fprintf(&sb, "\n<b>%s</b>\n", utils.EscapeHTML(group.Label))
		for _, mv := range group.Matches {
			line := matchLine(mv.Match, names)
			fmt.Fprintf(&sb, "#%d %s\n", mv.Match.ID, line)
			if mv.Ready && mv.Match.Status == models.MatchStatusPending {
				keyboard = append(keyboard, []chat.Button{{
					Text:         fmt.Sprintf("#%d %s", mv.Match.ID, line),
					CallbackData: adminCallback("match_view", mv.Match.ID),
				}})
			}
		}
	}
	b.send(ctx, chat.Message{ChatID: chatID, Text: sb.String(), Keyboard: keyboard})
}

func (b *Bot) sendMatchView(ctx context.Context, chatID int64, matchID int) {
	match, team1, team2, err := b.results.MatchDetail(ctx, matchID)
	if err != nil {
		b.reply(ctx, chatID, "Матч не найден.")
		return
	}

	name1, name2 := slotName(team1), slotName(team2)
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚔️ <b>%s — %s</b>\n", name1, name2)
	if match.Team1Score != nil && match.Team2Score != nil {
		fmt.Fprintf(&sb, "Счёт: %d:%d\n", *match.Team1Score, *match.Team2Score)
	}

	var keyboard [][]chat.Button
	if match.Ready() && match.Status != models.MatchStatusCanceled {
		label := "Ввести результат"
		if match.Status == models.MatchStatusCompleted {
			label = "Исправить результат"
		}
		keyboard = append(keyboard, []chat.Button{{
			Text:         label,
			CallbackData: adminCallback("enter_result", match.ID),
		}})
	}
	b.send(ctx, chat.Message{ChatID: chatID, Text: sb.String(), Keyboard: keyboard})
}

func (b *Bot) continueResultEntry(ctx context.Context, user *models.User, msg *chat.IncomingMessage, session Session) {
	score, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || score < 0 {
		b.reply(ctx, msg.ChatID, "Нужно целое неотрицательное число. Попробуйте ещё раз.")
		return
	}

	switch session.State {
	case StateAwaitT1Score:
		session.Team1Score = score
		session.State = StateAwaitT2Score
		b.sessions.Put(msg.ChatID, msg.From.ID, session)
		b.reply(ctx, msg.ChatID, "Введите счёт второй команды.")
	case StateAwaitT2Score:
		if score == session.Team1Score {
			b.reply(ctx, msg.ChatID, "Ничья недопустима: счёт должен определять победителя. Введите счёт второй команды ещё раз.")
			return
		}
		session.Team2Score = score
		session.State = StateConfirmResult
		b.sessions.Put(msg.ChatID, msg.From.ID, session)
		b.send(ctx, chat.Message{
			ChatID: msg.ChatID,
			Text:   fmt.Sprintf("Сохранить результат <b>%d:%d</b>?", session.Team1Score, session.Team2Score),
			Keyboard: [][]chat.Button{{
				{Text: "✅ Сохранить", CallbackData: adminCallback("confirm_result", session.MatchID)},
				{Text: "❌ Отмена", CallbackData: adminCallback("cancel_result", session.MatchID)},
			}},
		})
	}
}

func (b *Bot) confirmResult(ctx context.Context, cb *chat.CallbackQuery, matchID int) {
	session, ok := b.sessions.Get(cb.ChatID, cb.From.ID)
	if !ok || session.State != StateConfirmResult || session.MatchID != matchID {
		b.answer(ctx, cb.ID, "Ввод результата устарел, начните заново")
		return
	}
	b.sessions.Delete(cb.ChatID, cb.From.ID)

	outcome, err := b.results.CommitResult(ctx, matchID, session.Team1Score, session.Team2Score)
	if err != nil {
		b.answer(ctx, cb.ID, "")
		b.reply(ctx, cb.ChatID, resultErrorText(err))
		return
	}
	b.answer(ctx, cb.ID, "Результат сохранён")

	text := fmt.Sprintf("✅ Результат сохранён: <b>%d:%d</b>.",
		*outcome.Match.Team1Score, *outcome.Match.Team2Score)
	if !outcome.ProviderPushed {
		text += "\n⚠️ Передать счёт в сервис сеток не удалось, результат сохранён локально."
		if outcome.ProviderURL != "" {
			text += "\nПроверьте сетку вручную: " + outcome.ProviderURL
		}
	}
	b.reply(ctx, cb.ChatID, text)
}

func resultErrorText(err error) string {
	if ve := services.AsValidation(err); ve != nil {
		switch ve.Kind {
		case services.ValidationTiedScore:
			return "Ничья недопустима: счёт должен определять победителя."
		default:
			return "Некорректный счёт."
		}
	}
	switch {
	case errors.Is(err, services.ErrMatchSlotsEmpty):
		return "У матча ещё не заполнены оба участника."
	case errors.Is(err, services.ErrMatchCancelled):
		return "Матч отменён, результат ввести нельзя."
	case errors.Is(err, repositories.ErrMatchNotFound):
		return "Матч не найден."
	default:
		return "Не удалось сохранить результат, попробуйте позже."
	}
}

func (b *Bot) teamNames(ctx context.Context, tournamentID int) map[int]string {
	teams, err := b.teams.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		b.logger.Warn("failed to load team names",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return nil
	}
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names
}

func matchLine(m *models.Match, names map[int]string) string {
	side := func(id *int) string {
		if id == nil {
			return "—"
		}
		if name, ok := names[*id]; ok {
			return utils.EscapeHTML(name)
		}
		return fmt.Sprintf("команда %d", *id)
	}
	line := side(m.Team1ID) + " vs " + side(m.Team2ID)
	if m.Team1Score != nil && m.Team2Score != nil {
		line += fmt.Sprintf(" (%d:%d)", *m.Team1Score, *m.Team2Score)
	}
	return line
}

func slotName(team *models.Team) string {
	if team == nil {
		return "—"
	}
	return utils.EscapeHTML(team.Name)
}

func statusLabel(status models.TournamentStatus) string {
	switch status {
	case models.StatusRegistration:
		return "регистрация"
	case models.StatusInProgress:
		return "идёт"
	case models.StatusPaused:
		return "пауза"
	case models.StatusCompleted:
		return "завершён"
	case models.StatusCanceled:
		return "отменён"
	default:
		return string(status)
	}
}
