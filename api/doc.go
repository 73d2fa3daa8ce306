// Package api provides the HTTP REST API for Grovewalk.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session and stop its loop
//
// Input:
//   - POST /api/sessions/{id}/intent - Replace held keys ({"up":true})
//   - POST /api/sessions/{id}/step - One directional intent ({"direction":"up"})
//   - POST /api/sessions/{id}/walk - Settled steps ({"directions":["up","left"]})
//   - POST /api/sessions/{id}/hover - Pointer over a tile ({"x":3,"y":4})
//   - POST /api/sessions/{id}/click - Click {"x","y"}, or commit the hovered tile
//
// Simulation and State:
//   - POST /api/sessions/{id}/advance - Tick a paused session ({"ms":500})
//   - POST /api/sessions/{id}/reset - Draw a fresh world
//   - GET /api/sessions/{id}/state - Current snapshot
//   - GET /api/sessions/{id}/tiles/{x}/{y} - Describe one tile
//
// Configuration:
//   - GET /api/configs - List world configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration (unset fields take defaults)
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket stream, see package websocket
//
// Errors are returned as {"error": "..."}. Unknown sessions and configs map
// to 404, malformed input to 400, and Advance or Walk against a session with
// a running loop to 409.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
