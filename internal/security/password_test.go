package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap parameters keep the suite fast; production defaults stay slow.
var testParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWithParams("Secret123!", testParams)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.NotContains(t, hash, "Secret123!")

	ok, err := VerifyPassword("Secret123!", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordMismatch(t *testing.T) {
	hash, err := HashPasswordWithParams("Secret123!", testParams)
	require.NoError(t, err)

	ok, err := VerifyPassword("WrongPass!", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPasswordWithParams("same password", testParams)
	require.NoError(t, err)
	second, err := HashPasswordWithParams("same password", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of one password must differ by salt")
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$t=1,m=8192,p=1$onlyonepart",
		"$bcrypt$v=19$t=1,m=8192,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$t=0,m=0,p=0$c2FsdA$aGFzaA",
	}
	for _, encoded := range cases {
		_, err := VerifyPassword("whatever", encoded)
		assert.Error(t, err, "hash %q should not parse", encoded)
	}
}
