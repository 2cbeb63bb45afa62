package handlers

import (
	"face-swap-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Jobs       *JobsHandler
	Status     *StatusHandler
	Background *BackgroundHandler
	Characters *CharacterHandler
	Health     *HealthHandler
}

// NewRouter registers every route. The job API sits behind the bearer check
// when jwtSecret is set; health, root and swagger stay open.
func NewRouter(h Handlers, log zerolog.Logger, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/", h.Health.Root)
	router.GET("/health", h.Health.Health)

	api := router.Group("/")
	api.Use(middleware.AuthMiddleware(jwtSecret))

	api.POST("/face-swap", h.Jobs.FaceSwap)
	api.POST("/face-swap-with-cartoon", h.Jobs.FaceSwapWithCartoon)
	api.POST("/cartoonify-only", h.Jobs.CartoonifyOnly)

	api.POST("/remove-background", h.Background.RemoveBackground)
	api.POST("/remove-background-async", h.Background.RemoveBackgroundAsync)

	api.POST("/describe", h.Characters.Describe)
	api.POST("/cartoonize", h.Characters.Cartoonize)

	api.GET("/job/:job_id", h.Status.GetStatus)

	return router
}
