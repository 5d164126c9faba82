package router

import (
	"github.com/cuongbtq/socialtrend-automation/internal/api/handler"
	"github.com/cuongbtq/socialtrend-automation/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes. A nil
// m disables the /metrics route and request metrics.
func SetupRouter(deps *handler.Dependencies, m *metrics.Metrics) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())
	if m != nil {
		r.Use(m.GinMiddleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h := handler.NewHandler(deps)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/health/ready", h.Ready)

	automation := r.Group("/automation")
	{
		automation.POST("/token", h.Token)
		automation.GET("/me", h.RequireAuth(), h.Me)
	}

	api := r.Group("/api", h.RequireAuth())
	{
		api.POST("/upload", h.Upload)
		api.POST("/upload/schedule", h.ScheduleUpload)
		api.POST("/trends/fetch", h.FetchTrends)
		api.POST("/generate_caption", h.GenerateCaption)

		ai := api.Group("/ai")
		{
			ai.POST("/caption", h.AICaption)
			ai.POST("/process", h.AIProcess)
		}
	}

	return r
}
