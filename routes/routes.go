package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/controllers"
	"github.com/drivescan/drivescan-backend/middleware"
	"github.com/drivescan/drivescan-backend/queue"
	"github.com/drivescan/drivescan-backend/store"
	"github.com/drivescan/drivescan-backend/ws"
)

func SetupRouter(r *gin.Engine, st *store.Store, q *queue.Queue, w *queue.Worker) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.Use(middleware.Inject(st, q, w))
	{
		// Cola de auditoría
		api.POST("/documents", controllers.EnqueueDocuments)
		api.GET("/queue", controllers.GetQueue)
		api.DELETE("/queue/notice", controllers.DismissNotice)
		api.POST("/queue/sync-all", controllers.SyncAll)

		// Historial
		api.GET("/history", controllers.GetHistory)
		api.DELETE("/history/:folio", controllers.DeleteDocument)

		// Configuración
		api.GET("/settings", controllers.GetSettings)
		api.PUT("/settings", controllers.SaveSettings)

		// Estado del sistema
		api.GET("/health", controllers.HealthCheck)

		// Licencia
		api.GET("/license", controllers.GetLicense)
		api.POST("/license/activate", controllers.ActivatePremium)

		// Sesión
		api.GET("/session", controllers.GetSession)
		api.POST("/session", controllers.StartSession)
		api.DELETE("/session", controllers.EndSession)
	}

	r.GET("/ws/status", ws.HandleStatusWebSocket)

	return r
}
