package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentity is returned when a result row carries neither a valid
// player id nor a non-empty name.
var ErrInvalidIdentity = errors.New("result has neither a player id nor a player name")

// Kind discriminates the two identity channels.
type Kind int

const (
	Registered Kind = iota + 1
	Unregistered
)

// Identity is a participant identity: a registered player id, or an
// unregistered free-text name pending a future claim. It replaces the wire
// convention of a zero player_id plus a name string.
type Identity struct {
	Kind     Kind
	PlayerID int64
	Name     string
}

// Resolve decides the identity for a result row. A positive player id wins;
// otherwise the trimmed name is used. Unregistered names compare
// case-sensitively after trimming.
func Resolve(playerID int64, playerName string) (Identity, error) {
	if playerID > 0 {
		return Identity{Kind: Registered, PlayerID: playerID}, nil
	}
	name := strings.TrimSpace(playerName)
	if name == "" {
		return Identity{}, ErrInvalidIdentity
	}
	return Identity{Kind: Unregistered, Name: name}, nil
}

// IsRegistered reports whether the identity references a stable player id.
func (id Identity) IsRegistered() bool {
	return id.Kind == Registered
}

// Key returns a stable aggregation key: two results share a key exactly
// when they belong to the same participant.
func (id Identity) Key() string {
	if id.Kind == Registered {
		return fmt.Sprintf("p:%d", id.PlayerID)
	}
	return "n:" + id.Name
}

func (id Identity) String() string {
	if id.Kind == Registered {
		return fmt.Sprintf("player %d", id.PlayerID)
	}
	return fmt.Sprintf("unregistered %q", id.Name)
}
