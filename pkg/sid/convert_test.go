package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToBase62(t *testing.T) {
	assert.Equal(t, "0", IntToBase62(0))
	assert.Equal(t, "z", IntToBase62(35))
	assert.Equal(t, "Z", IntToBase62(61))
	assert.Equal(t, "10", IntToBase62(62))
	assert.Equal(t, "g8", IntToBase62(1000))
}
