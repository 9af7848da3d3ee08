package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasher(t *testing.T) {
	t.Run("is deterministic for the same input and secret", func(t *testing.T) {
		h := NewHasher("salt-1")
		assert.Equal(t, h.Hash("15551234567"), h.Hash("15551234567"))
	})

	t.Run("differs across inputs", func(t *testing.T) {
		h := NewHasher("salt-1")
		assert.NotEqual(t, h.Hash("15551234567"), h.Hash("15559999999"))
	})

	t.Run("differs across secrets", func(t *testing.T) {
		a := NewHasher("salt-1")
		b := NewHasher("salt-2")
		assert.NotEqual(t, a.Hash("15551234567"), b.Hash("15551234567"))
	})

	t.Run("emits hex sha256 length", func(t *testing.T) {
		h := NewHasher("salt-1")
		assert.Len(t, h.Hash("15551234567"), 64)
	})
}
