package auth_test

import (
	"testing"

	"github.com/cryptiklemur/discordarr/src/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	in := auth.LinkClaims{SessionID: "sess-1", DiscordUserID: "1234567890"}

	raw, err := auth.IssueLinkToken(in, secret)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	out, err := auth.ParseLinkToken(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLinkTokenRejectsWrongSecret(t *testing.T) {
	raw, err := auth.IssueLinkToken(auth.LinkClaims{SessionID: "sess-1", DiscordUserID: "1234567890"}, []byte("right"))
	require.NoError(t, err)

	_, err = auth.ParseLinkToken(raw, []byte("wrong"))
	assert.Error(t, err)
}

func TestLinkTokenRejectsGarbage(t *testing.T) {
	_, err := auth.ParseLinkToken("not-a-token", []byte("secret"))
	assert.Error(t, err)
}
