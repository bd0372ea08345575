// Package api exposes the graph, search, resolver and catalog operations
// over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kinship-graph/backend/internal/catalog"
	"kinship-graph/backend/internal/graph"
	"kinship-graph/backend/internal/resolver"
	"kinship-graph/backend/internal/search"
)

// Services are the core components served by the router
type Services struct {
	Graph           *graph.Repository
	Search          *search.Index
	Resolver        *resolver.Resolver
	Catalog         *catalog.Catalog
	DefaultLanguage string
}

type handler struct {
	svc Services
	log *zap.Logger
}

// NewRouter builds the gin engine with logging, recovery, CORS, health,
// metrics and all API routes.
func NewRouter(svc Services, log *zap.Logger) *gin.Engine {
	h := &handler{svc: svc, log: log}

	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/types", h.listTypes)
		api.POST("/types", h.addType)
	}

	owner := api.Group("/owners/:owner")
	{
		// Relationship graph
		owner.POST("/edges", h.createEdge)
		owner.GET("/edges/:edgeId", h.getRelationship)
		owner.PUT("/edges/:edgeId", h.updateRelationship)
		owner.PUT("/edges/:edgeId/row", h.updateEdge)
		owner.DELETE("/edges/:edgeId", h.deleteEdge)
		owner.GET("/edge", h.getEdge)
		owner.GET("/entities/:id/edges", h.listEdges)
		owner.GET("/path", h.findPath)

		// Search index
		owner.POST("/index", h.indexEntity)
		owner.GET("/entities/:id/name", h.displayName)
		owner.GET("/search", h.searchEntities)

		// Relational queries
		owner.GET("/resolve", h.resolve)
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
