package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard tool, no cross-origin restriction
	},
}

// HandleStatusWebSocket upgrades the connection and streams queue updates.
func HandleStatusWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade falló:", err)
		return
	}
	H.Register(conn)
	log.Println("Status WS connected")
}
