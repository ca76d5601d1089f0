package handlers

import (
	"playback_lights/internal/logger"
	"playback_lights/internal/notify"
	"playback_lights/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Subscriber is the read side of the notification hub.
type Subscriber interface {
	Subscribe() (<-chan notify.Message, func())
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      Subscriber
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub Subscriber, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Notification stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.requireUser)
	{
		h.registerPlayerRoutes(api)
		h.registerSettingsRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerPlayerRoutes(api *gin.RouterGroup) {
	// Body example: {"kind":"track_changed","track":{"uri":"spotify:track:1","artwork_url":"https://..."}}
	api.POST("/player/events", h.postPlayerEvent)
	api.GET("/sync/state", h.getSyncState)
}

func (h *Handler) registerSettingsRoutes(api *gin.RouterGroup) {
	settings := api.Group("/settings")
	{
		settings.GET("", h.getSettings)
		settings.GET("/schema", h.getSettingsSchema)
		settings.PUT("/:key", h.putSetting)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
