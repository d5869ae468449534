package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

const saltLength = 10

const saltAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// HashPassword derives the stored password hash:
// base64(HMAC-SHA256 keyed with the password over the per-user salt).
// The scheme is fixed by the stored data; existing rows were written with it.
func HashPassword(password, salt string) string {
	mac := hmac.New(sha256.New, []byte(password))
	mac.Write([]byte(salt))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyPassword reports whether password+salt hash to the stored value.
// The comparison is constant time.
func VerifyPassword(stored, password, salt string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(computed)) == 1
}

// NewSalt returns a fresh random salt. A new salt is drawn every time a
// password is set.
func NewSalt() string {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	for i, b := range buf {
		buf[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(buf)
}
