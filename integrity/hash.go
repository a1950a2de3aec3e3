// Package integrity computes the tamper-evidence fingerprint stored on
// closed clock entries. It is a checksum, not a MAC: there is no secret,
// it only detects out-of-band edits to the stored rows.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Field order is fixed; the digest is defined over exactly this
// serialization.
type entryPayload struct {
	ClockIn   string `json:"clockIn"`
	ClockOut  string `json:"clockOut"`
	UserID    string `json:"userId"`
	EntryDate string `json:"entryDate"`
}

// EntryHash returns the 64-character lowercase hex SHA-256 of the entry's
// immutable close-time fields. Any change to any argument changes the
// digest.
func EntryHash(clockIn, clockOut, userID, entryDate string) string {
	data, _ := json.Marshal(entryPayload{
		ClockIn:   clockIn,
		ClockOut:  clockOut,
		UserID:    userID,
		EntryDate: entryDate,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
