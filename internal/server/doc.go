// Package server exposes the role projections of a contest over a
// read-only JSON HTTP API.
//
//	GET /healthz
//	GET /api/{role}/scoreboard
//	GET /api/{role}/{kind}
//	GET /api/{role}/{kind}/{id}
//	GET /api/team/{teamID}/scoreboard
//	GET /api/team/{teamID}/{kind}
//	GET /api/team/{teamID}/{kind}/{id}
//
// The role is a path segment; there is no authentication.
package server
