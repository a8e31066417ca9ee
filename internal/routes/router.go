package routes

import (
	"weddingplan/internal/controller"
	"weddingplan/internal/middleware"
	"weddingplan/internal/store"

	"github.com/gin-gonic/gin"
)

type Options struct {
	Local       store.Backend
	JWTSecret   string
	PremiumGate bool
}

func Router(h *controller.Handler, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Health for load balancers and K8s probes
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	// Signed by the payment provider; no device or user
	router.POST("/billing/webhook", h.Webhook)

	api := router.Group("")
	api.Use(middleware.OptionalAuth(opts.JWTSecret), middleware.Device(opts.Local))
	{
		api.GET("/tasks", h.GetTasks)
		api.PATCH("/tasks/:id", h.UpdateTask)
		api.PUT("/tasks/:id/status", h.SetTaskStatus)
		api.POST("/tasks/:id/cycle", h.CycleTaskStatus)
		api.POST("/tasks/:id/subtasks/:subtaskId/toggle", h.ToggleSubtask)
		api.POST("/tasks/reset", h.ResetTasks)

		api.GET("/prenup", h.GetPrenup)
		api.PATCH("/prenup/:id", h.UpdatePrenupItem)
		api.POST("/prenup/reset", h.ResetPrenup)

		api.GET("/settings", h.GetSettings)
		api.PATCH("/settings", h.UpdateSettings)
		api.POST("/settings/reset", h.ResetSettings)

		api.GET("/dashboard", h.Dashboard)
		api.GET("/budget", h.Budget)

		api.GET("/partner", h.PartnerStatus)
		api.POST("/partner/code", h.ShareCode)
		api.POST("/partner/link", h.LinkPartner)
		api.DELETE("/partner/link", h.UnlinkPartner)

		api.GET("/billing/status", h.BillingStatus)
		api.POST("/feedback", h.SubmitFeedback)
	}

	premium := api.Group("")
	premium.Use(middleware.RequirePremium(opts.PremiumGate, h.Billing))
	{
		premium.GET("/export", h.Export)
		premium.POST("/import", h.Import)
	}

	// JWT required
	signedIn := api.Group("")
	signedIn.Use(middleware.RequireAuth())
	{
		signedIn.POST("/sync/migrate", h.Migrate)
		signedIn.POST("/billing/checkout", h.Checkout)
	}

	return router
}
