package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/fittrack/internal/auth"
)

// HandleWebSocket upgrades the connection and streams updates for the
// request's user.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			http.Error(w, "missing user", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		hub.logger.Debug("websocket connected", "user_id", userID)
		NewClient(hub, conn, userID).Run(r.Context())
	}
}
