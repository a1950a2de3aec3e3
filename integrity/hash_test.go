package integrity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestEntryHashDeterministic(t *testing.T) {
	a := EntryHash("2026-02-10T12:00:00.000Z", "2026-02-10T20:30:00.000Z", "user-1", "2026-02-10T00:00:00.000Z")
	b := EntryHash("2026-02-10T12:00:00.000Z", "2026-02-10T20:30:00.000Z", "user-1", "2026-02-10T00:00:00.000Z")

	assert.Equal(t, a, b)
	assert.Regexp(t, hexDigest, a)
}

func TestEntryHashFieldSensitivity(t *testing.T) {
	base := EntryHash("in", "out", "user", "date")

	tests := []struct {
		name string
		hash string
	}{
		{"clockIn changed", EntryHash("in2", "out", "user", "date")},
		{"clockOut changed", EntryHash("in", "out2", "user", "date")},
		{"userId changed", EntryHash("in", "out", "user2", "date")},
		{"entryDate changed", EntryHash("in", "out", "user", "date2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.hash)
			assert.Regexp(t, hexDigest, tt.hash)
		})
	}
}

func TestEntryHashOrderSensitivity(t *testing.T) {
	// Swapping values between fields must change the digest.
	assert.NotEqual(t,
		EntryHash("a", "b", "c", "d"),
		EntryHash("b", "a", "c", "d"),
	)
}
