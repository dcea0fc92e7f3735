package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRedactBody(t *testing.T) {
	out := redactBody([]byte(`{"vm_name":"web-01","password":"s3cret","ssh_key":"ssh-ed25519 AAAA"}`))
	assert.Contains(t, out, `"vm_name":"web-01"`)
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "AAAA")

	assert.Equal(t, "plain text", redactBody([]byte("plain text")))
}

func TestMaskQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", "/api/v1/deployments/1/progress/ws?token=abc.def", nil)

	assert.Equal(t, "/api/v1/deployments/1/progress/ws?token=%2A%2A%2A%2A%2A%2A", maskQuery(ctx))
}
