// Package chat names the chat-platform collaborator. The rest of the system
// talks to the platform only through the Client interface; wire details stay
// behind it.
package chat

import "context"

// MemberStatus is the platform's channel-membership answer for a user.
type MemberStatus string

const (
	MemberCreator       MemberStatus = "creator"
	MemberAdministrator MemberStatus = "administrator"
	MemberMember        MemberStatus = "member"
	MemberLeft          MemberStatus = "left"
	MemberKicked        MemberStatus = "kicked"
)

// Subscribed reports whether the status satisfies a channel gate.
func (s MemberStatus) Subscribed() bool {
	switch s {
	case MemberCreator, MemberAdministrator, MemberMember:
		return true
	}
	return false
}

// Button is one inline keyboard button; CallbackData uses the
// namespace:action grammar.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Message is an outbound message. Text is HTML; user-supplied strings must
// already be escaped by the caller.
type Message struct {
	ChatID   int64
	Text     string
	Keyboard [][]Button
}

// Update is one inbound event: either a text message or a callback-button
// press.
type Update struct {
	UpdateID int64 `json:"update_id"`

	Message  *IncomingMessage `json:"message,omitempty"`
	Callback *CallbackQuery   `json:"callback_query,omitempty"`
}

type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	From      Sender `json:"from"`
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	FileRef   string `json:"file_ref,omitempty"`
}

type CallbackQuery struct {
	ID     string `json:"id"`
	From   Sender `json:"from"`
	ChatID int64  `json:"chat_id"`
	Data   string `json:"data"`
}

type Sender struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Client is the outbound half of the platform.
type Client interface {
	SendMessage(ctx context.Context, msg Message) error
	GetChatMember(ctx context.Context, channel string, userExternalID int64) (MemberStatus, error)
	// DownloadFile fetches the bytes behind an opaque platform file handle.
	DownloadFile(ctx context.Context, fileRef string) ([]byte, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
