package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	requestTimeout = 15 * time.Second
	maxRetries     = 3
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string

	// HTTPClient overrides the default client; used by tests.
	HTTPClient *http.Client
}

type httpClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	username     string
	client       *http.Client

	mu          sync.Mutex
	bearerToken string
	tokenExpiry time.Time
}

func NewHTTPClient(cfg Config) Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &httpClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		username:     cfg.Username,
		client:       client,
	}
}

// --- wire shapes ---

type tournamentWire struct {
	Tournament struct {
		ID      json.Number `json:"id"`
		Name    string      `json:"name"`
		FullURL string      `json:"full_challonge_url"`
		URL     string      `json:"url"`
		State   string      `json:"state"`
	} `json:"tournament"`
}

type participantWire struct {
	Participant struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"participant"`
}

type matchWire struct {
	Match struct {
		ID                  json.Number `json:"id"`
		Round               int         `json:"round"`
		State               string      `json:"state"`
		SuggestedPlayOrder  *int        `json:"suggested_play_order"`
		Player1ID           *int64      `json:"player1_id"`
		Player2ID           *int64      `json:"player2_id"`
		PointsByParticipant []struct {
			ParticipantID int64 `json:"participant_id"`
			Scores        []int `json:"scores"`
		} `json:"points_by_participant"`
	} `json:"match"`
}

type errorWire struct {
	Errors []string `json:"errors"`
}

// --- operations ---

func (c *httpClient) CreateTournament(ctx context.Context, name string, typ TournamentType, description string) (*RemoteTournament, error) {
	fields := map[string]interface{}{
		"name":            name,
		"tournament_type": string(typ),
		"description":     description,
	}
	// Tournaments live under the account's subdomain so they are grouped
	// on the provider side.
	if c.username != "" {
		fields["subdomain"] = c.username
	}
	body := map[string]interface{}{"tournament": fields}

	var wire tournamentWire
	if err := c.do(ctx, http.MethodPost, "/tournaments.json", nil, body, &wire); err != nil {
		return nil, err
	}
	return normalizeTournament(&wire), nil
}

func (c *httpClient) AddParticipant(ctx context.Context, remoteID, participantName string) (*RemoteParticipant, error) {
	body := map[string]interface{}{
		"participant": map[string]interface{}{"name": participantName},
	}

	var wire participantWire
	path := fmt.Sprintf("/tournaments/%s/participants.json", url.PathEscape(remoteID))
	if err := c.do(ctx, http.MethodPost, path, nil, body, &wire); err != nil {
		return nil, err
	}
	return &RemoteParticipant{ID: wire.Participant.ID, Name: wire.Participant.Name}, nil
}

func (c *httpClient) StartTournament(ctx context.Context, remoteID string) error {
	path := fmt.Sprintf("/tournaments/%s/start.json", url.PathEscape(remoteID))
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *httpClient) GetTournament(ctx context.Context, remoteID string) (*RemoteTournament, error) {
	var wire tournamentWire
	path := fmt.Sprintf("/tournaments/%s.json", url.PathEscape(remoteID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &wire); err != nil {
		return nil, err
	}
	return normalizeTournament(&wire), nil
}

func (c *httpClient) GetParticipants(ctx context.Context, remoteID string) ([]RemoteParticipant, error) {
	var wires []participantWire
	path := fmt.Sprintf("/tournaments/%s/participants.json", url.PathEscape(remoteID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &wires); err != nil {
		return nil, err
	}

	participants := make([]RemoteParticipant, 0, len(wires))
	for _, w := range wires {
		participants = append(participants, RemoteParticipant{ID: w.Participant.ID, Name: w.Participant.Name})
	}
	return participants, nil
}

func (c *httpClient) GetMatches(ctx context.Context, remoteID string) ([]RemoteMatch, error) {
	var wires []matchWire
	path := fmt.Sprintf("/tournaments/%s/matches.json", url.PathEscape(remoteID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &wires); err != nil {
		return nil, err
	}

	matches := make([]RemoteMatch, 0, len(wires))
	for _, w := range wires {
		m := RemoteMatch{
			ID:        w.Match.ID.String(),
			Round:     w.Match.Round,
			State:     w.Match.State,
			Player1ID: w.Match.Player1ID,
			Player2ID: w.Match.Player2ID,
		}
		if w.Match.SuggestedPlayOrder != nil {
			m.PlayOrder = *w.Match.SuggestedPlayOrder
		}
		for _, pts := range w.Match.PointsByParticipant {
			total := 0
			for _, s := range pts.Scores {
				total += s
			}
			m.PointsByParticipant = append(m.PointsByParticipant, ParticipantPoints{
				ParticipantID: pts.ParticipantID,
				Points:        total,
			})
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (c *httpClient) UpdateMatchScore(ctx context.Context, remoteID, remoteMatchID string, winnerParticipantID int64, scoresCSV string, loserParticipantID *int64) error {
	match := map[string]interface{}{
		"winner_id":  winnerParticipantID,
		"scores_csv": scoresCSV,
	}
	if loserParticipantID != nil {
		match["loser_id"] = *loserParticipantID
	}
	body := map[string]interface{}{"match": match}

	path := fmt.Sprintf("/tournaments/%s/matches/%s.json",
		url.PathEscape(remoteID), url.PathEscape(remoteMatchID))
	return c.do(ctx, http.MethodPut, path, nil, body, nil)
}

func normalizeTournament(wire *tournamentWire) *RemoteTournament {
	t := &RemoteTournament{
		ID:    wire.Tournament.ID.String(),
		Name:  wire.Tournament.Name,
		URL:   wire.Tournament.FullURL,
		State: wire.Tournament.State,
	}
	if t.URL == "" {
		t.URL = wire.Tournament.URL
	}
	t.Started = t.State != "" && t.State != "pending"
	return t
}

// --- transport ---

func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(500*time.Millisecond))
	var respBody []byte
	var statusCode int

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if reqErr != nil {
			return reqErr
		}
		if len(query) > 0 {
			req.URL.RawQuery = query.Encode()
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, doErr := c.client.Do(req)
		if doErr != nil {
			// Timeouts and connection failures are retryable.
			return retry.RetryableError(doErr)
		}
		defer resp.Body.Close()

		respBody, reqErr = io.ReadAll(resp.Body)
		if reqErr != nil {
			return retry.RetryableError(reqErr)
		}
		statusCode = resp.StatusCode

		if statusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("provider returned %d", statusCode))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if statusCode >= 400 {
		return c.mapAPIError(statusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (c *httpClient) mapAPIError(status int, body []byte) error {
	var wire errorWire
	_ = json.Unmarshal(body, &wire)
	reason := strings.Join(wire.Errors, "; ")
	if reason == "" {
		reason = "status " + strconv.Itoa(status)
	}
	lower := strings.ToLower(reason)

	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case strings.Contains(lower, "already") && strings.Contains(lower, "start"):
		return ErrAlreadyStarted
	case strings.Contains(lower, "name") && strings.Contains(lower, "taken"):
		return ErrDuplicateParticipant
	case strings.Contains(lower, "participant") && strings.Contains(lower, "least"):
		return ErrNotEnoughParticipants
	case strings.Contains(lower, "state") || strings.Contains(lower, "transition"):
		return ErrInvalidTransition
	default:
		return &RejectedError{Reason: reason}
	}
}

// token lazily fetches and caches the client-credentials bearer token.
func (c *httpClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bearerToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.bearerToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", ErrUnavailable, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUnavailable)
	}

	c.bearerToken = tokenResp.AccessToken
	ttl := time.Duration(tokenResp.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.tokenExpiry = time.Now().Add(ttl - 30*time.Second)
	return c.bearerToken, nil
}
