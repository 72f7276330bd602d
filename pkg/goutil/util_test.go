package goutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@b.com", "a@b.com"},
		{" A@B.com ", "a@b.com"},
		{"MiXeD@Example.COM", "mixed@example.com"},
		{"\tpadded@example.com\n", "padded@example.com"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeEmail(tc.in), tc.in)
	}
}

func TestIsEmail(t *testing.T) {
	valid := []string{
		"a@b.com",
		"first.last@sub.example.co",
		"user+tag@example.io",
	}
	for _, email := range valid {
		assert.True(t, IsEmail(email), email)
	}

	invalid := []string{
		"",
		"plain",
		"@nodomain.com",
		"nolocal@",
		"no-tld@host",
		"spaces in@example.com",
		"trailing-dot@example.",
	}
	for _, email := range invalid {
		assert.False(t, IsEmail(email), email)
	}
}

func TestSha256(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Sha256("hello"))
	assert.Len(t, Sha256(""), 64)
}

func TestBase64Decode(t *testing.T) {
	s, err := Base64Decode("aGVsbG8=")
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)

	_, err = Base64Decode("!!!")
	assert.Error(t, err)
}

func TestContainsStr(t *testing.T) {
	arr := []string{"trial", "active"}
	assert.True(t, ContainsStr(arr, "trial"))
	assert.False(t, ContainsStr(arr, "cancelled"))
	assert.False(t, ContainsStr(nil, "trial"))
}
