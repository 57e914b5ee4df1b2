package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/drivescan/drivescan-backend/config"
	"github.com/drivescan/drivescan-backend/models"
	"github.com/drivescan/drivescan-backend/queue"
	"github.com/drivescan/drivescan-backend/routes"
	"github.com/drivescan/drivescan-backend/services"
	"github.com/drivescan/drivescan-backend/store"
	"github.com/drivescan/drivescan-backend/ws"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No se encontró archivo .env")
	}

	config.InitDB()
	st := store.New(config.DB)

	q := queue.New(st)
	q.SetOnUpdate(ws.BroadcastJobUpdate)

	worker := queue.NewWorker(q, st,
		services.NormalizeDocument,
		services.AnalyzeDocument,
		services.SyncToSheets,
		func(ctx context.Context) *models.UserSubscription {
			return services.ValidateLicense(st, config.LicenseServerURL(), st.Get(store.KeyScriptEndpoint))
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, st, q, worker)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Println("Server running at Port:" + port)
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("el servidor no pudo iniciar: %v", err)
		}
	}()

	// Graceful shutdown: stop the worker before exiting.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Apagando...")
	cancel()
}
