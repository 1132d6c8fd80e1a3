package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/config"
	"github.com/ikkim/manajir-storefront/internal/app/controller"
	"github.com/ikkim/manajir-storefront/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func routeSet(engine *gin.Engine) map[string]bool {
	routes := make(map[string]bool)
	for _, route := range engine.Routes() {
		routes[route.Method+" "+route.Path] = true
	}
	return routes
}

func newTestRouter(realtime *controller.RealtimeController) *Router {
	cfg := &config.Config{
		Server:  config.ServerConfig{GinMode: gin.TestMode},
		Session: config.SessionConfig{CookieName: "storefront_sid"},
	}
	return NewRouter(nil, nil, nil, nil, nil, nil, realtime, middleware.NewAuthMiddleware("test-secret"), cfg)
}

func TestSetup_RegistersLiveUpdates(t *testing.T) {
	routes := routeSet(newTestRouter(controller.NewRealtimeController(nil, nil)).Setup())

	assert.True(t, routes[http.MethodGet+" /api/v1/ws"])
	assert.True(t, routes[http.MethodPost+" /api/v1/cart/items"])
	assert.True(t, routes[http.MethodPost+" /api/v1/checkout/payment"])
}

func TestSetup_WithoutRealtime(t *testing.T) {
	routes := routeSet(newTestRouter(nil).Setup())

	assert.False(t, routes[http.MethodGet+" /api/v1/ws"])
	assert.True(t, routes[http.MethodGet+" /api/v1/cart"])
}
