package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroupSessionIDNormalizes(t *testing.T) {
	serviceID := uuid.New()
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)

	utc := NewGroupSessionID(serviceID, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	local := NewGroupSessionID(serviceID, time.Date(2026, 9, 1, 13, 0, 0, 0, kyiv))

	assert.Equal(t, utc, local)
	assert.Equal(t, utc.String(), local.String())
	assert.Equal(t, utc.LockKey(), local.LockKey())
}

func TestGroupSessionIDRoundTrip(t *testing.T) {
	gsid := NewGroupSessionID(uuid.New(), time.Date(2026, 9, 1, 10, 15, 0, 0, time.UTC))

	parsed, err := ParseGroupSessionID(gsid.String())
	require.NoError(t, err)
	assert.Equal(t, gsid, parsed)

	raw, err := json.Marshal(gsid)
	require.NoError(t, err)
	var back GroupSessionID
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, gsid, back)
}

func TestParseGroupSessionIDRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"not-a-session",
		"not-a-uuid_2026-09-01T10:00:00Z",
		uuid.NewString() + "_not-a-time",
	} {
		_, err := ParseGroupSessionID(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestLockKeyDistinguishesSessions(t *testing.T) {
	serviceID := uuid.New()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	a := NewGroupSessionID(serviceID, at)
	sameSession := NewGroupSessionID(serviceID, at)
	laterSlot := NewGroupSessionID(serviceID, at.Add(15*time.Minute))
	otherService := NewGroupSessionID(uuid.New(), at)

	assert.Equal(t, a.LockKey(), sameSession.LockKey())
	assert.NotEqual(t, a.LockKey(), laterSlot.LockKey())
	assert.NotEqual(t, a.LockKey(), otherService.LockKey())
}
