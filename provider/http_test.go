package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the token endpoint plus whatever API routes the test
// registers, and counts token requests.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, Client, *int32) {
	t.Helper()
	var tokenCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "cid", r.FormValue("client_id"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1",
			"expires_in":   3600,
		})
	})
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewHTTPClient(Config{
		BaseURL:      server.URL,
		ClientID:     "cid",
		ClientSecret: "secret",
		Username:     "org",
		HTTPClient:   server.Client(),
	})
	return server, client, &tokenCalls
}

func TestCreateTournament_Normalization(t *testing.T) {
	_, client, tokenCalls := newTestServer(t, map[string]http.HandlerFunc{
		"/tournaments.json": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

			var body map[string]map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Spring Cup", body["tournament"]["name"])
			assert.Equal(t, "double elimination", body["tournament"]["tournament_type"])
			assert.Equal(t, "org", body["tournament"]["subdomain"])

			w.Write([]byte(`{"tournament":{"id":123456,"name":"Spring Cup","full_challonge_url":"https://challonge.com/abc","state":"pending"}}`))
		},
	})

	remote, err := client.CreateTournament(context.Background(), "Spring Cup", TypeDoubleElimination, "")
	require.NoError(t, err)
	assert.Equal(t, "123456", remote.ID)
	assert.Equal(t, "https://challonge.com/abc", remote.URL)
	assert.False(t, remote.Started)
	assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls))
}

func TestTokenIsCached(t *testing.T) {
	_, client, tokenCalls := newTestServer(t, map[string]http.HandlerFunc{
		"/tournaments/rt-1/participants.json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		},
	})

	for i := 0; i < 3; i++ {
		_, err := client.GetParticipants(context.Background(), "rt-1")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls))
}

func TestGetMatches_Normalization(t *testing.T) {
	_, client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"/tournaments/rt-1/matches.json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"match":{"id":9001,"round":1,"state":"open","suggested_play_order":1,"player1_id":101,"player2_id":102}},
				{"match":{"id":9002,"round":-2,"state":"pending","points_by_participant":[
					{"participant_id":103,"scores":[1,2]},
					{"participant_id":104,"scores":[]}
				]}}
			]`))
		},
	})

	matches, err := client.GetMatches(context.Background(), "rt-1")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "9001", matches[0].ID)
	assert.Equal(t, 1, matches[0].Round)
	assert.Equal(t, 1, matches[0].PlayOrder)
	require.NotNil(t, matches[0].Player1ID)
	assert.Equal(t, int64(101), *matches[0].Player1ID)

	assert.Equal(t, -2, matches[1].Round)
	assert.Nil(t, matches[1].Player1ID)
	p1, p2 := matches[1].SlotParticipants()
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.Equal(t, int64(103), *p1)
	assert.Equal(t, int64(104), *p2)
	assert.Equal(t, 3, matches[1].PointsByParticipant[0].Points)
}

func TestUpdateMatchScore_WireFormat(t *testing.T) {
	var got map[string]map[string]interface{}
	_, client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"/tournaments/rt-1/matches/9001.json": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"match":{"id":9001}}`))
		},
	})

	loser := int64(102)
	err := client.UpdateMatchScore(context.Background(), "rt-1", "9001", 101, FormatScoresCSV(3, 1), &loser)
	require.NoError(t, err)

	assert.Equal(t, "3-1", got["match"]["scores_csv"])
	assert.Equal(t, float64(101), got["match"]["winner_id"])
	assert.Equal(t, float64(102), got["match"]["loser_id"])
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{}`, ErrNotFound},
		{"already started", http.StatusUnprocessableEntity, `{"errors":["Tournament has already been started"]}`, ErrAlreadyStarted},
		{"duplicate name", http.StatusUnprocessableEntity, `{"errors":["Name has already been taken"]}`, ErrDuplicateParticipant},
		{"too few", http.StatusUnprocessableEntity, `{"errors":["Tournament needs at least 2 participants"]}`, ErrNotEnoughParticipants},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, client, _ := newTestServer(t, map[string]http.HandlerFunc{
				"/tournaments/rt-1/start.json": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					w.Write([]byte(tc.body))
				},
			})
			err := client.StartTournament(context.Background(), "rt-1")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestServerErrorsRetryThenFail(t *testing.T) {
	var calls int32
	_, client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"/tournaments/rt-1/start.json": func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		},
	})

	err := client.StartTournament(context.Background(), "rt-1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "initial attempt plus three retries")
}

func TestFormatScoresCSV(t *testing.T) {
	assert.Equal(t, "3-1", FormatScoresCSV(3, 1))
	assert.Equal(t, "0-2", FormatScoresCSV(0, 2))
	assert.Equal(t, "10-12", FormatScoresCSV(10, 12))
}
