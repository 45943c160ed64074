// Package httpapi exposes podopt over HTTP using gin.
//
// Routes:
//
//	POST /api/auphonic                    Auphonic completion webhook (unauthenticated)
//	POST /api/episodes/:id/optimize-audio queue an optimization with default settings
//	GET  /api/episodes/:id                episode details
//	GET  /api/episodes/:id/events         Server-Sent Events of status changes
//	GET  /api/status                      liveness, dispatcher load and credits
//
// Episode routes require "Authorization: Bearer <server.api_token>" when a
// token is configured. Errors are JSON bodies of the form
// {"error": "...", "kind": "..."}; configuration errors map to 422, unknown
// episodes or productions to 404 and a running optimization to 409.
package httpapi
