package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	for _, p := range []string{"1234", "correct horse battery staple", "пароль", ""} {
		digest := Hash(p)
		assert.Len(t, digest, 64)
		assert.True(t, Verify(p, digest), "password %q must verify against its own hash", p)
	}
}

func TestVerifyRejectsOtherPasswords(t *testing.T) {
	digest := Hash("secret1")
	assert.False(t, Verify("secret2", digest))
	assert.False(t, Verify("", digest))
}

func TestVerifyEmptyDigest(t *testing.T) {
	// An unconfigured installation stores an empty digest; nothing verifies.
	assert.False(t, Verify("anything", ""))
}

func TestHashIsDeterministic(t *testing.T) {
	assert.Equal(t, Hash("1234"), Hash("1234"))
	assert.NotEqual(t, Hash("1234"), Hash("1235"))
}
