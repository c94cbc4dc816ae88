package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadCallback = errors.New("malformed callback data")

// Callback is the parsed form of inline-button data. The wire grammar is
// "namespace:action" with an optional trailing "_<id>" argument, e.g.
// "admin:enter_result_17" or "register_team:42" (empty action, id only).
type Callback struct {
	Namespace string
	Action    string
	Arg       int
	HasArg    bool
}

func ParseCallback(data string) (Callback, error) {
	namespace, rest, ok := strings.Cut(data, ":")
	if !ok || namespace == "" || rest == "" {
		return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	cb := Callback{Namespace: namespace}

	if id, err := strconv.Atoi(rest); err == nil {
		cb.Arg = id
		cb.HasArg = true
		return cb, nil
	}

	if idx := strings.LastIndexByte(rest, '_'); idx >= 0 {
		if id, err := strconv.Atoi(rest[idx+1:]); err == nil {
			cb.Action = rest[:idx]
			cb.Arg = id
			cb.HasArg = true
			return cb, nil
		}
	}
	cb.Action = rest
	return cb, nil
}

func (c Callback) String() string {
	switch {
	case c.Action == "" && c.HasArg:
		return fmt.Sprintf("%s:%d", c.Namespace, c.Arg)
	case c.HasArg:
		return fmt.Sprintf("%s:%s_%d", c.Namespace, c.Action, c.Arg)
	default:
		return c.Namespace + ":" + c.Action
	}
}

func adminCallback(action string, arg int) string {
	return Callback{Namespace: "admin", Action: action, Arg: arg, HasArg: true}.String()
}

func registerCallback(tournamentID int) string {
	return Callback{Namespace: "register_team", Arg: tournamentID, HasArg: true}.String()
}
