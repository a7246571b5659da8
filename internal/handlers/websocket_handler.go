package handlers

import (
	"net/http"

	"leadflow/internal/wsnotify"
)

// WebSocketHandler attaches a console surface to the broadcast hub. The
// connection is write-only from the server side; reads only detect closure.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsnotify.Upgrader().Upgrade(w, r, nil)
	if err != nil {
		return
	}
	wsnotify.Manager.AddClient(conn)
	defer func() {
		wsnotify.Manager.RemoveClient(conn)
		conn.Close()
	}()
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
