package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "/api/v1", r.APIPrefix())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.APIPrefix())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("integrations", "/clients/:client_id")
	group.POST("/integrations/bolcom/import", func(c *gin.Context) {
		c.String(http.StatusOK, "import "+c.Param("client_id"))
	})
	r.Register(group).Setup()

	w := serve(engine, http.MethodPost, "/api/v1/clients/c1/integrations/bolcom/import")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "import c1", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/clients/c1/integrations/bolcom/import").Code)
}

func TestRouterAPIMiddleware(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	reject := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTeapot)
	}
	r := NewRouter(engine, WithAPIMiddleware(reject))
	r.Register(NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	}))
	r.Setup()

	assert.Equal(t, http.StatusTeapot, serve(engine, http.MethodGet, "/api/v1/test/ping").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/catalog")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/catalog", g.Prefix())
	})

	t.Run("group middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("clients", "/clients/:client_id").Use(func(c *gin.Context) {
			c.Header("X-Group", "clients")
			c.Next()
		})
		g.Group("products", "/products").POST("/import", func(c *gin.Context) {
			c.String(http.StatusCreated, "imported")
		})
		g.Handle(http.MethodPut, "/noop", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodPost, "/api/v1/clients/c1/products/import")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "clients", w.Header().Get("X-Group"))

		assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodPut, "/api/v1/clients/c1/noop").Code)
	})
}
