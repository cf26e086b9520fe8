package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers a handler's routes on a group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router wires the API surface. Registrars fall into two groups:
// public ones (gateway webhooks, which authenticate by signature) and
// shopper ones, which sit behind the shopper identity middleware.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	shopperMW  []gin.HandlerFunc
	public     []RouteRegistrar
	shopper    []RouteRegistrar
}

// Option is a functional option for Router configuration
type Option func(*Router)

// WithAPIVersion sets the API version prefix (e.g. "v1")
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithShopperMiddleware sets the middleware guarding shopper routes,
// typically middleware.ShopperIdentity.
func WithShopperMiddleware(mw ...gin.HandlerFunc) Option {
	return func(r *Router) {
		r.shopperMW = mw
	}
}

// New creates a Router
func New(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterPublic adds registrars whose routes skip shopper resolution
func (r *Router) RegisterPublic(registrars ...RouteRegistrar) *Router {
	r.public = append(r.public, registrars...)
	return r
}

// Register adds registrars whose routes require a shopper identity
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.shopper = append(r.shopper, registrars...)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.public {
		registrar.RegisterRoutes(api)
	}

	shopperGroup := api.Group("", r.shopperMW...)
	for _, registrar := range r.shopper {
		registrar.RegisterRoutes(shopperGroup)
	}
}
