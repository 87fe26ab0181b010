package api

import (
	"log"
	stdhttp "net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	h "github.com/natannielz/Ticket-Bus-sub000/internal/http/handlers"
	"github.com/natannielz/Ticket-Bus-sub000/internal/http/middleware"
	"github.com/natannielz/Ticket-Bus-sub000/internal/routing"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.SetJWTSecret(env.JWTSecret)
	h.SetRoutingProvider(routing.NewClient(env.RoutingBaseURL))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), cors.New(corsConfig()))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		// Storefront publik
		api.GET("/routes", h.GetRoutes)
		api.GET("/routes/:id", h.GetRouteByID)
		api.GET("/schedules/live", h.GetLiveSchedules)
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/code/:code", h.GetBookingByCode)
		api.DELETE("/bookings/:id", h.CancelBooking)
		api.GET("/bookings/:id/e-ticket", h.GetBookingETicketPDF)

		// Chat support
		chat := api.Group("/chat")
		chat.POST("/messages", h.SendChatMessage)
		chat.GET("/messages", h.GetChatMessages)

		// Konsol operasional
		admin := api.Group("")
		admin.Use(middleware.RequireAuth(h.JWTSecret()), middleware.RequireRoles("owner", "admin"))
		{
			admin.GET("/users", h.GetUsers)
			admin.GET("/users/:id", h.GetUserByID)
			admin.POST("/users", h.CreateUser)
			admin.PUT("/users/:id", h.UpdateUser)
			admin.DELETE("/users/:id", h.DeleteUser)

			admin.GET("/armadas", h.GetArmadas)
			admin.POST("/armadas", h.CreateArmada)
			admin.PUT("/armadas/:id", h.UpdateArmada)
			admin.PUT("/armadas/:id/status", h.SetArmadaStatus)
			admin.DELETE("/armadas/:id", h.DeleteArmada)

			admin.GET("/crews", h.GetCrews)
			admin.POST("/crews", h.CreateCrew)
			admin.PUT("/crews/:id", h.UpdateCrew)
			admin.DELETE("/crews/:id", h.DeleteCrew)

			admin.POST("/routes", h.CreateRoute)
			admin.PUT("/routes/:id", h.UpdateRoute)
			admin.DELETE("/routes/:id", h.DeleteRoute)

			admin.GET("/schedules", h.GetSchedules)
			admin.POST("/schedules", h.CreateSchedule)
			admin.PUT("/schedules/:id", h.UpdateSchedule)
			admin.PUT("/schedules/:id/toggle-live", h.ToggleScheduleLive)
			admin.DELETE("/schedules/:id", h.DeleteSchedule)

			admin.GET("/bookings", h.GetBookings)
			admin.PUT("/bookings/:id/checkin", h.CheckinBooking)

			admin.GET("/chat/sessions", h.GetChatSessions)
		}
	}

	return r
}

func corsConfig() cors.Config {
	cfg := cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000", "http://127.0.0.1:3000",
			"http://localhost:5173", "http://127.0.0.1:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}

	if env := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); env != "" {
		origins := []string{}
		for _, o := range strings.Split(env, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.AllowOrigins = origins
		}
	}

	return cfg
}
