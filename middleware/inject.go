package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/queue"
	"github.com/drivescan/drivescan-backend/store"
)

// Inject makes the shared application state reachable from any handler
// via c.MustGet.
func Inject(st *store.Store, q *queue.Queue, w *queue.Worker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("store", st)
		c.Set("queue", q)
		c.Set("worker", w)
		c.Next()
	}
}
