package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге сообщений бота.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Предусловия: действие невалидно в текущем состоянии
	ErrRegistrationNotOpen      = errors.New("tournament registration is not open")
	ErrRegistrationWindowClosed = errors.New("registration window is closed")
	ErrTournamentFull           = errors.New("tournament has no free slots")
	ErrCaptainAlreadyRegistered = errors.New("captain already has a team in this tournament")
	ErrNotEnoughTeams           = errors.New("at least two approved teams are required")
	ErrBracketNotCreated        = errors.New("tournament has no remote bracket yet")
	ErrMatchSlotsEmpty          = errors.New("match slots are not filled yet")
	ErrMatchCancelled           = errors.New("match is cancelled")
	ErrRosterFull               = errors.New("team roster is full")
	ErrTeamLocked               = errors.New("team can no longer be edited")

	// Ошибки статусных переходов
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentInvalidDates            = errors.New("tournament dates must satisfy reg_start < reg_end < start")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)

// ValidationKind identifies the deterministic input check that failed.
type ValidationKind string

const (
	ValidationEmptyName           ValidationKind = "empty"
	ValidationReservedName        ValidationKind = "reserved"
	ValidationNameTooShort        ValidationKind = "too_short"
	ValidationNameTooLong         ValidationKind = "too_long"
	ValidationInvalidChars        ValidationKind = "invalid_chars"
	ValidationInsufficientLetters ValidationKind = "insufficient_letters"
	ValidationUnsubscribed        ValidationKind = "unsubscribed"
	ValidationTiedScore           ValidationKind = "tie"
	ValidationBadScore            ValidationKind = "bad_score"
)

// ValidationError is surfaced to the user with its detail message; it is not
// logged as an error.
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validation failed: %s", e.Kind)
	}
	return fmt.Sprintf("validation failed: %s (%s)", e.Kind, e.Detail)
}

func newValidationError(kind ValidationKind, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Detail: detail}
}

// AsValidation unwraps err into a ValidationError, or nil.
func AsValidation(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
