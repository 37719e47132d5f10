// Package keys derives client short keys and daily verification tokens.
// Both functions are pure; all inputs are strings so results are stable
// across processes and restarts.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"keypulse/internal/client/models"
)

// ShortKeyLength is the truncated hex length of a derived short key.
// Truncation trades collision resistance for a key operators can read
// aloud; the full digest backs the daily tokens.
const ShortKeyLength = 16

// DeriveShortKey maps a client identity to its stable short key:
// hex(SHA-256("clientName-startDate-endDate-cin")) truncated to
// ShortKeyLength characters. Recomputing from the same identity always
// yields the same value.
func DeriveShortKey(identity models.Identity) string {
	raw := fmt.Sprintf("%s-%s-%s-%s", identity.ClientName, identity.StartDate, identity.EndDate, identity.CIN)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:ShortKeyLength]
}

// DailyToken maps (shortKey, date) to that day's verification token:
// the full hex SHA-256 digest of shortKey+date. The date must be a
// fixed-width YYYY-MM-DD string.
func DailyToken(shortKey, date string) string {
	sum := sha256.Sum256([]byte(shortKey + date))
	return hex.EncodeToString(sum[:])
}
