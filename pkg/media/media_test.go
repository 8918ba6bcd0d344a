package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireOpenRelease(t *testing.T) {
	s := NewStore(0)

	lease := s.Acquire([]byte("bytes"), "audio/mpeg")
	require.NotEmpty(t, lease.ID)

	data, ct, err := s.Open(lease.ID)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
	assert.Equal(t, "audio/mpeg", ct)

	s.Release(lease.ID)
	_, _, err = s.Open(lease.ID)
	assert.ErrorIs(t, err, ErrLeaseNotFound)
}

func TestReleaseAll(t *testing.T) {
	s := NewStore(0)
	s.Acquire([]byte("a"), "image/png")
	s.Acquire([]byte("b"), "video/mp4")
	require.Equal(t, 2, s.Len())

	s.ReleaseAll()
	assert.Equal(t, 0, s.Len())
}

func TestExpiredLeaseIsGone(t *testing.T) {
	s := NewStore(time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	lease := s.Acquire([]byte("a"), "image/png")

	current = current.Add(2 * time.Minute)
	_, _, err := s.Open(lease.ID)
	assert.ErrorIs(t, err, ErrLeaseNotFound)
}

func TestSweep(t *testing.T) {
	s := NewStore(time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Acquire([]byte("old"), "image/png")
	current = current.Add(2 * time.Minute)
	fresh := s.Acquire([]byte("fresh"), "image/png")

	assert.Equal(t, 1, s.Sweep())
	_, _, err := s.Open(fresh.ID)
	assert.NoError(t, err)
}
