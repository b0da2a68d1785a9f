package auth_test

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/auth"
)

func TestCodeGenerator_SixDigits(t *testing.T) {
	t.Parallel()

	gen := auth.NewCodeGenerator(nil)
	pattern := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestCodeGenerator_ZeroPads(t *testing.T) {
	t.Parallel()

	// An all-zero source draws zero.
	gen := auth.NewCodeGenerator(bytes.NewReader(make([]byte, 64)))

	code, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, "000000", code)
}

func TestCodeGenerator_SourceExhausted(t *testing.T) {
	t.Parallel()

	gen := auth.NewCodeGenerator(bytes.NewReader(nil))

	_, err := gen.Generate()
	assert.Error(t, err)
}

func TestNormalizeOTP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "012345", auth.NormalizeOTP(" 012345\n"))
	assert.Equal(t, "", auth.NormalizeOTP("   "))
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := auth.NewBcryptHasher(4)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.ErrorIs(t, h.Compare(hash, "secret2"), auth.ErrPasswordMismatch)
}
