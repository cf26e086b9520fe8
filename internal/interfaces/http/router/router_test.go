package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubRegistrar struct {
	path string
}

func (s *stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(s.path, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func TestRouter_Setup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var shopperMWCalls int
	countingMW := func(c *gin.Context) {
		shopperMWCalls++
		c.Next()
	}

	engine := gin.New()
	r := New(engine,
		WithAPIVersion("v1"),
		WithShopperMiddleware(countingMW),
	)
	r.RegisterPublic(&stubRegistrar{path: "/webhooks/test"})
	r.Register(&stubRegistrar{path: "/cart"})
	r.Setup()

	t.Run("shopper route passes through the middleware", func(t *testing.T) {
		shopperMWCalls = 0
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, shopperMWCalls)
	})

	t.Run("public route skips the middleware", func(t *testing.T) {
		shopperMWCalls = 0
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, shopperMWCalls)
	})

	t.Run("unknown route is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("default version prefix", func(t *testing.T) {
		e2 := gin.New()
		New(e2).Register(&stubRegistrar{path: "/orders"}).Setup()
		w := httptest.NewRecorder()
		e2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
