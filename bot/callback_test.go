package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data string
		want Callback
	}{
		{"register_team:42", Callback{Namespace: "register_team", Arg: 42, HasArg: true}},
		{"admin:show_matches_7", Callback{Namespace: "admin", Action: "show_matches", Arg: 7, HasArg: true}},
		{"admin:enter_result_17", Callback{Namespace: "admin", Action: "enter_result", Arg: 17, HasArg: true}},
		{"admin:confirm_result_3", Callback{Namespace: "admin", Action: "confirm_result", Arg: 3, HasArg: true}},
		{"admin:sync_matches_12", Callback{Namespace: "admin", Action: "sync_matches", Arg: 12, HasArg: true}},
		{"admin:tournaments", Callback{Namespace: "admin", Action: "tournaments"}},
	}
	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			got, err := ParseCallback(tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCallback_Malformed(t *testing.T) {
	for _, data := range []string{"", "admin", ":action", "admin:"} {
		t.Run(data, func(t *testing.T) {
			_, err := ParseCallback(data)
			assert.ErrorIs(t, err, ErrBadCallback)
		})
	}
}

func TestCallback_RoundTrip(t *testing.T) {
	for _, data := range []string{
		"register_team:42",
		"admin:match_view_5",
		"admin:tournaments",
	} {
		parsed, err := ParseCallback(data)
		require.NoError(t, err)
		assert.Equal(t, data, parsed.String())
	}
}

func TestCallbackHelpers(t *testing.T) {
	assert.Equal(t, "admin:enter_result_9", adminCallback("enter_result", 9))
	assert.Equal(t, "register_team:3", registerCallback(3))
}
