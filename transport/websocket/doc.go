// Package websocket pushes Drone Safari session updates to browser watchers.
//
// Clients connect to /ws?session=<id> and receive a JSON message after every
// command applied to that session:
//
//	{"session_id": "ab12cd34", "event": "state_update", "game_state": {...}}
//
// game_state is the engine Status snapshot. Other events, such as
// session_deleted, carry an optional data field instead. Each message is sent
// in its own text frame; frames sent by clients are ignored.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Cancelling the context passed to Run disconnects every client. A client
// whose send buffer fills up is dropped rather than blocking the broadcaster.
package websocket
