package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/urmzd/homecare/pkg/api/handlers"
	"github.com/urmzd/homecare/pkg/assistant"
	"github.com/urmzd/homecare/pkg/db"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// Deps are the components the HTTP surface serves.
type Deps struct {
	Home      *home.Home
	Router    *toolcall.Router
	Decoder   *toolcall.Decoder
	Assistant *assistant.Assistant
	Retriever toolcall.Retriever // may be nil
	Inbox     *notify.Inbox
	Sink      notify.Sink // where custom notifications go; defaults to Inbox
	Profiles  db.ProfileStore
	History   handlers.HistoryClearer // may be nil
	Database  handlers.Pinger         // may be nil
	LLM       handlers.Pinger         // may be nil
}

// Router holds the Gin engine and dependencies
type Router struct {
	engine *gin.Engine
	deps   Deps
}

// NewRouter creates a new API router
func NewRouter(deps Deps) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	if deps.Sink == nil {
		deps.Sink = deps.Inbox
	}
	router := &Router{
		engine: engine,
		deps:   deps,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	d := r.deps

	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Health check at root
	healthHandler := handlers.NewHealthHandler(d.Database, d.LLM)
	r.engine.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Chat
		chatHandler := handlers.NewChatHandler(d.Assistant, d.History)
		wsHandler := handlers.NewWSHandler(d.Assistant, d.Inbox, d.Home.Devices)
		chat := v1.Group("/chat")
		{
			chat.POST("", chatHandler.Chat)
			chat.DELETE("", chatHandler.Reset)
			chat.GET("/history", chatHandler.History)
		}
		v1.GET("/ws", wsHandler.Serve)

		// Devices and location
		devicesHandler := handlers.NewDevicesHandler(d.Home, d.Router)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.GET("/:room/:device", devicesHandler.GetDevice)
			devices.POST("/:room/:device/state", devicesHandler.SetState)
		}
		v1.GET("/location", devicesHandler.GetLocation)
		v1.PUT("/location", devicesHandler.SetLocation)

		// Schedule
		scheduleHandler := handlers.NewScheduleHandler(d.Home, d.Router)
		sched := v1.Group("/schedule")
		{
			sched.GET("", scheduleHandler.ListSchedule)
			sched.POST("", scheduleHandler.AddItem)
			sched.PATCH("", scheduleHandler.ChangeItem)
			sched.DELETE("", scheduleHandler.DeleteItem)
		}

		// Notifications
		notificationsHandler := handlers.NewNotificationsHandler(d.Inbox, d.Sink, d.Home.Devices)
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationsHandler.ListNotifications)
			notifications.POST("", notificationsHandler.PostCustom)
			notifications.GET("/events", notificationsHandler.Events)
			notifications.POST("/:id/ack", notificationsHandler.Acknowledge)
		}

		// Preferences
		preferencesHandler := handlers.NewPreferencesHandler(d.Home)
		prefs := v1.Group("/preferences")
		{
			prefs.GET("", preferencesHandler.GetPreferences)
			prefs.POST("/do-not-remind", preferencesHandler.AddDoNotRemind)
			prefs.DELETE("/do-not-remind/:item", preferencesHandler.RemoveDoNotRemind)
			prefs.PUT("/notify", preferencesHandler.SetNotify)
		}

		// Profile
		if d.Profiles != nil {
			profileHandler := handlers.NewProfileHandler(d.Profiles, d.Assistant)
			v1.GET("/profile", profileHandler.GetProfile)
			v1.PUT("/profile", profileHandler.UpdateProfile)
		}

		// Tools
		toolsHandler := handlers.NewToolsHandler(d.Decoder, d.Router)
		v1.GET("/tools", toolsHandler.ListTools)
		v1.POST("/tools/:name", toolsHandler.Call)

		// Knowledge base
		ragHandler := handlers.NewRAGHandler(d.Retriever)
		v1.POST("/rag/query", ragHandler.Query)
	}
}

// Handler returns the engine as an http.Handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
