package jwt

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWT {
	conf := viper.New()
	conf.Set("security.jwt.key", "test-signing-key")
	return NewJwt(conf)
}

func TestGenAndParseToken(t *testing.T) {
	j := newTestJWT()
	token, err := j.GenToken("operator-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := j.ParseToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.UserId)
}

func TestParseToken_Expired(t *testing.T) {
	j := newTestJWT()
	token, err := j.GenToken("operator-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = j.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Empty(t *testing.T) {
	_, err := newTestJWT().ParseToken("Bearer ")
	assert.EqualError(t, err, "token is empty")
}
