package events

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// the server binds to localhost; the desktop front-end connects
		// from a file:// or app origin
		return true
	},
}

func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		clientID := uuid.NewString()
		hub.AddWS(ws, clientID)
		log.Printf("[ws] client connected: %s", clientID)

		_ = ws.WriteMessage(
			websocket.TextMessage,
			[]byte(`{"type":"welcome","transport":"websocket","client_id":"`+clientID+`"}`+"\n"),
		)

		// Keep the connection open; incoming messages are ignored.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Printf("[ws] client disconnected: %s", clientID)
	}
}
