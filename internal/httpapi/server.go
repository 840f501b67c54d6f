package httpapi

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"healthroute/internal/classifier"
	"healthroute/internal/config"
	"healthroute/internal/middleware"
	"healthroute/internal/resolver"
	"healthroute/internal/router"
	"healthroute/internal/store"
)

// Server wires the injected components (spec §9: "no component reaches
// into globals at request time") into a gin.Engine.
type Server struct {
	cfg        *config.Config
	db         *sql.DB
	store      *store.Store
	classifier *classifier.Classifier
	resolver   *resolver.Resolver
	router     *router.Router
}

func NewServer(cfg *config.Config, db *sql.DB, st *store.Store, cl *classifier.Classifier, res *resolver.Resolver, rt *router.Router) *Server {
	return &Server{cfg: cfg, db: db, store: st, classifier: cl, resolver: res, router: rt}
}

// NewRouter builds the gin.Engine exposing the five endpoints of spec §4.1.
func (s *Server) NewRouter() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.RequestLog())
	engine.Use(middleware.Deadline(time.Duration(s.cfg.RequestDeadlineMS) * time.Millisecond))
	engine.Use(middleware.RateLimit(120, time.Minute))

	engine.POST("/hospitals/severity-based", s.handleSeverityBasedSearch)
	engine.GET("/pincode/:code", s.handlePincode)
	engine.POST("/symptoms/classify", s.handleClassify)
	engine.GET("/hospitals", s.handleHospitalsSearch)
	engine.GET("/hospitals/search", s.handleFuzzySearch)
	engine.GET("/hospitals/stats", s.handleStats)
	engine.GET("/health", s.handleHealth)

	return engine
}
