package auth

import (
	"context"
	"testing"

	coffer "github.com/iov-one/coffer"
	"github.com/stretchr/testify/assert"
)

func TestAuthenticate(t *testing.T) {
	a := coffer.NewCondition("sigs", "ed25519", []byte("foo"))
	b := coffer.NewCondition("sigs", "ed25519", []byte("bar"))
	c := coffer.NewCondition("sigs", "ed25519", []byte("baz"))

	var auth Authenticate

	bg := context.Background()
	assert.Empty(t, auth.GetConditions(bg))
	assert.False(t, auth.HasAddress(bg, a.Address()))

	ctx := SetConditions(bg, a, b)
	assert.Equal(t, []coffer.Condition{a, b}, auth.GetConditions(ctx))
	assert.True(t, auth.HasAddress(ctx, a.Address()))
	assert.True(t, auth.HasAddress(ctx, b.Address()))
	assert.False(t, auth.HasAddress(ctx, c.Address()))
}
