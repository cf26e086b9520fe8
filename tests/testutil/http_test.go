package testutil

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "ERR_BAD_REQUEST", "message": "bad body"},
			})
			return
		}
		c.SetCookie("session", "abc", 3600, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": body})
	})
	return engine
}

func TestDo(t *testing.T) {
	engine := testEngine()

	t.Run("sends a JSON body and decodes the envelope", func(t *testing.T) {
		w := Do(t, engine, Request{
			Method: http.MethodPost,
			Path:   "/echo",
			Body:   map[string]string{"name": "mouse"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		AssertSuccess(t, w)
		assert.Equal(t, "mouse", DataField(t, w)["name"])
	})

	t.Run("captures response cookies", func(t *testing.T) {
		w := Do(t, engine, Request{
			Method: http.MethodPost,
			Path:   "/echo",
			Body:   map[string]string{},
		})

		cookie := ResponseCookie(w, "session")
		require.NotNil(t, cookie)
		assert.Equal(t, "abc", cookie.Value)
	})

	t.Run("asserts error envelopes", func(t *testing.T) {
		w := Do(t, engine, Request{
			Method:  http.MethodPost,
			Path:    "/echo",
			RawBody: []byte("not json"),
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		AssertError(t, w, "ERR_BAD_REQUEST")
	})
}
