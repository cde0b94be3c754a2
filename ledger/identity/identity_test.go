package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
)

func keyFromSeed(s byte) ed25519.PublicKey {
	seed := blake2b.Sum256([]byte{s})
	return ed25519.NewKeyFromSeed(seed[:]).Public().(ed25519.PublicKey)
}

func TestIdentity(t *testing.T) {
	t.Run("structural equality", func(t *testing.T) {
		pub := keyFromSeed(1)
		cp := make([]byte, len(pub))
		copy(cp, pub)
		require.Equal(t, FromPublicKey(pub), FromPublicKey(cp))
		require.NotEqual(t, FromPublicKey(pub), FromPublicKey(keyFromSeed(2)))
	})
	t.Run("bytes", func(t *testing.T) {
		id := FromPublicKey(keyFromSeed(1))
		back, err := FromBytes(id.Bytes())
		require.NoError(t, err)
		require.Equal(t, id, back)
		_, err = FromBytes(id.Bytes()[:5])
		require.Error(t, err)
	})
}

func TestSet(t *testing.T) {
	a := FromPublicKey(keyFromSeed(1))
	b := FromPublicKey(keyFromSeed(2))
	c := FromPublicKey(keyFromSeed(3))

	t.Run("equal", func(t *testing.T) {
		require.True(t, NewSet(a, b).Equal(NewSet(b, a)))
		require.True(t, NewSet(a, b, a).Equal(NewSet(b, a)))
		require.False(t, NewSet(a, b).Equal(NewSet(a, b, c)))
		require.False(t, NewSet(a, b).Equal(NewSet(a, c)))
		require.True(t, NewSet().Equal(NewSet()))
	})
	t.Run("union", func(t *testing.T) {
		s1 := NewSet(a, b)
		u := s1.Union(NewSet(b, c))
		require.EqualValues(t, 3, u.Len())
		require.EqualValues(t, 2, s1.Len())
	})
	t.Run("difference", func(t *testing.T) {
		d := NewSet(a, b, c).Difference(NewSet(b))
		require.True(t, d.Equal(NewSet(a, c)))
	})
	t.Run("sorted is deterministic", func(t *testing.T) {
		require.EqualValues(t, NewSet(a, b, c).Sorted(), NewSet(c, b, a).Sorted())
		require.EqualValues(t, NewSet(a, b, c).String(), NewSet(c, a, b).String())
	})
}
