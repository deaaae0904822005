package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidToken is returned for tokens this package did not produce.
var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the opaque pagination state we encode/decode.
// Lists are ordered by their auto-increment id DESC, so the id of the last
// row served is a stable cursor even when rows share a timestamp.
type Cursor struct {
	LastID uint64 `json:"last_id"`
}

// IsZero reports whether this is the first page.
func (c Cursor) IsZero() bool {
	return c.LastID == 0
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}

// Page trims rows fetched with limit+1 back to limit and returns the token
// for the next page, or nil when there is none.
func Page[T any](rows []T, limit int, cursorOf func(T) Cursor) ([]T, *string) {
	if limit <= 0 || len(rows) <= limit {
		return rows, nil
	}
	token, err := Encode(cursorOf(rows[limit-1]))
	if err != nil {
		return rows[:limit], nil
	}
	return rows[:limit], &token
}
