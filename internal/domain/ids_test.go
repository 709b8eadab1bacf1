package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelexs/dictsmoke/internal/domain"
)

func TestNewRunID(t *testing.T) {
	a := domain.NewRunID()
	b := domain.NewRunID()

	assert.False(t, a.IsZero())
	assert.NotEqual(t, a.String(), b.String())
	assert.Len(t, a.Short(), 8)
}

func TestParseRunID(t *testing.T) {
	t.Run("valid UUID", func(t *testing.T) {
		id, err := domain.ParseRunID("550e8400-e29b-41d4-a716-446655440000")
		require.NoError(t, err)
		assert.Equal(t, "550e8400", id.Short())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := domain.ParseRunID("")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("not a UUID", func(t *testing.T) {
		_, err := domain.ParseRunID("run-1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("alternate UUID forms are canonicalized", func(t *testing.T) {
		for _, raw := range []string{
			"{550e8400-e29b-41d4-a716-446655440000}",
			"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
			"550e8400e29b41d4a716446655440000",
			"550E8400-E29B-41D4-A716-446655440000",
		} {
			t.Run(raw, func(t *testing.T) {
				id, err := domain.ParseRunID(raw)
				require.NoError(t, err)
				assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
				assert.Equal(t, "550e8400", id.Short())

				n, err := id.Numeric()
				require.NoError(t, err)
				assert.Equal(t, uint32(0x550e8400), n)
			})
		}
	})

	t.Run("zero value", func(t *testing.T) {
		assert.True(t, domain.RunID{}.IsZero())
	})
}

func TestRunIDNumeric(t *testing.T) {
	id, err := domain.ParseRunID("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)

	n, err := id.Numeric()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x550e8400), n)

	_, err = domain.RunID{}.Numeric()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
