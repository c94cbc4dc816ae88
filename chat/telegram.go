package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const botAPIBase = "https://api.telegram.org"

// BotClient implements Client against the Bot API. It is deliberately thin:
// the system's behavior lives behind the Client interface, not here.
type BotClient struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewBotClient(token string) *BotClient {
	return &BotClient{
		token:   token,
		baseURL: botAPIBase,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *BotClient) SendMessage(ctx context.Context, msg Message) error {
	payload := map[string]interface{}{
		"chat_id":    msg.ChatID,
		"text":       msg.Text,
		"parse_mode": "HTML",
	}
	if len(msg.Keyboard) > 0 {
		payload["reply_markup"] = map[string]interface{}{"inline_keyboard": msg.Keyboard}
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

func (c *BotClient) GetChatMember(ctx context.Context, channel string, userExternalID int64) (MemberStatus, error) {
	var result struct {
		Status MemberStatus `json:"status"`
	}
	payload := map[string]interface{}{
		"chat_id": channel,
		"user_id": userExternalID,
	}
	if err := c.call(ctx, "getChatMember", payload, &result); err != nil {
		return "", err
	}
	return result.Status, nil
}

func (c *BotClient) DownloadFile(ctx context.Context, fileRef string) ([]byte, error) {
	var file struct {
		FilePath string `json:"file_path"`
	}
	if err := c.call(ctx, "getFile", map[string]interface{}{"file_id": fileRef}, &file); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *BotClient) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
	}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

// ParseUpdate converts one raw Bot API webhook payload into the neutral
// Update shape. Unsupported update kinds come back empty, not as errors.
func ParseUpdate(body []byte) (Update, error) {
	var wire struct {
		UpdateID int64 `json:"update_id"`
		Message  *struct {
			MessageID int64  `json:"message_id"`
			From      Sender `json:"from"`
			Chat      struct {
				ID int64 `json:"id"`
			} `json:"chat"`
			Text     string `json:"text"`
			Caption  string `json:"caption"`
			Document *struct {
				FileID string `json:"file_id"`
			} `json:"document"`
			Photo []struct {
				FileID string `json:"file_id"`
			} `json:"photo"`
		} `json:"message"`
		CallbackQuery *struct {
			ID      string `json:"id"`
			From    Sender `json:"from"`
			Data    string `json:"data"`
			Message *struct {
				Chat struct {
					ID int64 `json:"id"`
				} `json:"chat"`
			} `json:"message"`
		} `json:"callback_query"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return Update{}, fmt.Errorf("malformed update payload: %w", err)
	}

	update := Update{UpdateID: wire.UpdateID}
	if wire.Message != nil {
		msg := &IncomingMessage{
			MessageID: wire.Message.MessageID,
			From:      wire.Message.From,
			ChatID:    wire.Message.Chat.ID,
			Text:      wire.Message.Text,
		}
		if msg.Text == "" {
			msg.Text = wire.Message.Caption
		}
		if wire.Message.Document != nil {
			msg.FileRef = wire.Message.Document.FileID
		} else if n := len(wire.Message.Photo); n > 0 {
			// The last photo size is the largest.
			msg.FileRef = wire.Message.Photo[n-1].FileID
		}
		update.Message = msg
	}
	if wire.CallbackQuery != nil && wire.CallbackQuery.Message != nil {
		update.Callback = &CallbackQuery{
			ID:     wire.CallbackQuery.ID,
			From:   wire.CallbackQuery.From,
			ChatID: wire.CallbackQuery.Message.Chat.ID,
			Data:   wire.CallbackQuery.Data,
		}
	}
	return update, nil
}

func (c *BotClient) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat platform call %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("chat platform call %s: bad response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("chat platform call %s rejected: %s", method, envelope.Description)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("chat platform call %s: bad result: %w", method, err)
		}
	}
	return nil
}
