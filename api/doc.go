// Package api exposes Drone Safari sessions over HTTP.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "thicket"}; empty uses the default layout)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions for the multi-session view (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - Session details with status and layout
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/status - Status snapshot
//   - POST /api/sessions/{id}/move - {"direction": "forward|backward|left|right", "sensors": true}
//   - POST /api/sessions/{id}/turn - {"direction": "left|right"}
//   - POST /api/sessions/{id}/picture - Take a picture; the body is optional
//   - POST /api/sessions/{id}/reset - Restore the layout's initial state
//   - POST /api/sessions/{id}/commands - {"commands": ["turn left", "move forward"], "reset": false}
//   - GET /api/sessions/{id}/scan - Sensor sweep from the current cell
//   - GET /api/sessions/{id}/history - Command history (?page=1&limit=20&order=desc)
//   - GET /api/sessions/{id}/solution - Shortest winning plan from the current state
//
// Configuration:
//   - GET /api/configs - List layouts
//   - POST /api/configs - Save a layout (?id=name overrides the layout name as file ID)
//   - GET /api/configs/schema - JSON Schema for layouts
//   - GET /api/configs/{name} - Layout by ID
//
// Other:
//   - GET /healthz - Liveness and session count
//   - GET /ws?session={id} - Live status updates, see package websocket
//
// Commands the engine refuses still answer 200; the "status" field is
// "applied", "rejected" or "ignored". Unknown sessions and layouts answer
// 404, malformed bodies and invalid layouts 400.
//
// Every applied command is broadcast to the session's websocket watchers.
package api
