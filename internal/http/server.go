// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"speedyvan/internal/http/handlers"
	"speedyvan/internal/http/middleware"
	"speedyvan/internal/infra"
	"speedyvan/internal/modules/pricing"
	"speedyvan/internal/service"
)

type ServerDeps struct {
	Planner *service.QuotePlanner
	Pricing *pricing.Service
	// Verifier guards the admin routes; they are not mounted when nil.
	Verifier infra.TokenVerifier
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type Server struct {
	planner  *service.QuotePlanner
	pricing  *pricing.Service
	verifier infra.TokenVerifier
	gatherer prometheus.Gatherer
	log      *zap.Logger
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		planner:  deps.Planner,
		pricing:  deps.Pricing,
		verifier: deps.Verifier,
		gatherer: gatherer,
		log:      log,
	}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log))

	pricingHandler := handlers.NewPricingHandler(s.planner, s.pricing)
	widgetHandler := handlers.NewWidgetHandler(s.planner, s.pricing)
	geocodeHandler := handlers.NewGeocodeHandler(s.planner)

	api := r.Group("/api")
	api.POST("/distance", pricingHandler.Distance)
	api.POST("/geocode", geocodeHandler.Geocode)
	api.POST("/carbon/estimate", handlers.Carbon)
	api.POST("/pricing/quote", pricingHandler.Quote)
	api.POST("/pricing/lock", pricingHandler.Lock)
	api.POST("/quote/widget", widgetHandler.Create)
	api.GET("/quote/:id", widgetHandler.Get)

	if s.verifier != nil {
		admin := api.Group("/admin", middleware.Auth(s.verifier), middleware.RequireRole(middleware.RoleAdmin))
		admin.GET("/pricing-rules", pricingHandler.Rules)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}
