package reaction

import (
	"errors"
	"strconv"
	"strings"
)

// IdentityPrefix marks trigger entries that match a numeric user
// identity instead of text ("id:12345").
const IdentityPrefix = "id:"

var ErrEmptyTrigger = errors.New("empty trigger")

// NormalizeTrigger lowercases a raw trigger value and strips a leading
// "@". Empty input (after trimming) is rejected.
func NormalizeTrigger(raw string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, "@")
	if v == "" {
		return "", ErrEmptyTrigger
	}
	return v, nil
}

// IdentityTrigger builds the id:<N> form for a resolved numeric user id.
func IdentityTrigger(userID int64) string {
	return IdentityPrefix + strconv.FormatInt(userID, 10)
}

// IsIdentityTrigger reports whether value is an id:<N> entry.
func IsIdentityTrigger(value string) bool {
	return strings.HasPrefix(value, IdentityPrefix)
}
