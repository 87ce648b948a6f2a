package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"vertice/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are enforced by the cors middleware
	},
}

// WSHandler subscribes the caller's client namespace. It must run behind
// auth.ClientMiddleware.
func (h *Hub) WSHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// registered and greeted under one lock so no broadcast slips in
		// between or writes concurrently with the greeting
		h.mu.Lock()
		h.wsClients[ws] = claims.ClientID
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`+"\n"))
		h.mu.Unlock()
		h.log.Info("ws client connected")

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		h.RemoveWS(ws)
		h.log.Info("ws client disconnected")
	}
}
