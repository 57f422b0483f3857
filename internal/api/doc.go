// Package api provides the operator REST API and WebSocket feed for
// LoRaWatch Core.
//
// Routes, all under /api/v1:
//
//	GET    /health                     component health, no auth
//	GET    /devices                    ?status= &class= filters
//	POST   /devices                    provision in ChirpStack and register
//	GET    /devices/stats
//	POST   /devices/refresh            reload from ChirpStack
//	GET    /devices/{devEUI}
//	DELETE /devices/{devEUI}
//	DELETE /devices/{devEUI}/alert     clear a latched alert
//	POST   /devices/{devEUI}/commands  {"command": "reset_request"}
//	GET    /profiles
//	GET    /logs                       ?kind=event|alert &limit=
//	GET    /ws                         WebSocket, ?token= when auth is on
//
// Operator actions answer with {"ok": bool, "message": string}. Reads
// return the resource or a structured error.
//
// WebSocket clients subscribe to notification kinds:
//
//	{"type": "subscribe", "id": "1", "payload": {"channels": ["device.changed", "alert"]}}
//
// When security.jwt.secret is set every route except /health needs an
// HS256 bearer token issued by IssueToken.
package api
