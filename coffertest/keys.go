package coffertest

import (
	"crypto/rand"

	coffer "github.com/iov-one/coffer"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a newly generated ed25519 private key.
func NewKey() ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return priv
}

// NewCondition returns a signature condition backed by a fresh ed25519 key.
// Use this to create unique identities in tests.
func NewCondition() coffer.Condition {
	pub := NewKey().Public().(ed25519.PublicKey)
	return coffer.NewCondition("sigs", "ed25519", pub)
}
