// Package websocket streams live session updates to browsers and tools.
//
// A central Hub tracks clients per session ID. Each connection gets a read
// pump and a write pump goroutine; the hub never blocks on a slow client and
// drops it once its send buffer is full.
//
// Outgoing messages are JSON:
//
//	{"session_id":"ab12","event":"snapshot","snapshot":{...}}
//	{"session_id":"ab12","event":"tree_falling","data":{...}}
//
// Several messages may share one WebSocket frame, separated by newlines.
//
// Clients may send input commands, decoded and passed to Hub.OnCommand:
//
//	{"type":"intent","intent":{"up":true}}
//	{"type":"step","direction":"left"}
//	{"type":"hover","x":4,"y":7}
//	{"type":"click","x":4,"y":7}
//
// Hub implements service.Broadcaster, so session loops publish snapshots and
// drained events through it directly.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
