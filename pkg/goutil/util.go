package goutil

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

func ContainsStr(arr []string, str string) bool {
	for _, v := range arr {
		if v == str {
			return true
		}
	}
	return false
}

func Base64Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Sha256(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// NormalizeEmail lowercases the whole address and trims surrounding spaces.
// Dedup and unsubscribe matching both rely on this single rule.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmail checks the basic local@domain.tld shape. It is deliberately loose,
// the provider does the authoritative validation on send.
func IsEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	var (
		local  = email[:at]
		domain = email[at+1:]
	)
	if strings.ContainsAny(local, " \t") {
		return false
	}

	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return !strings.ContainsAny(domain, " \t")
}
