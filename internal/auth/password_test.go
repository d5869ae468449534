package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordDeterministic(t *testing.T) {
	h1 := HashPassword("Sup3rSecret!", "abc123defg")
	h2 := HashPassword("Sup3rSecret!", "abc123defg")
	require.Equal(t, h1, h2)

	other := HashPassword("Sup3rSecret!", "zzz999zzz9")
	require.NotEqual(t, h1, other)
}

func TestVerifyPassword(t *testing.T) {
	salt := NewSalt()
	stored := HashPassword("Passw0rd!", salt)

	require.True(t, VerifyPassword(stored, "Passw0rd!", salt))
	require.False(t, VerifyPassword(stored, "passw0rd!", salt))
	require.False(t, VerifyPassword(stored, "Passw0rd!", "wrongsalt0"))
	require.False(t, VerifyPassword("", "Passw0rd!", salt))
}

func TestNewSalt(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		salt := NewSalt()
		require.Len(t, salt, 10)
		for _, r := range salt {
			require.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "unexpected salt rune %q", r)
		}
		seen[salt] = struct{}{}
	}
	// 100 draws from a 36^10 space should never collide.
	require.Len(t, seen, 100)
}
