// Package server provides the HTTP server of taskengine.
//
// The server uses the Gin web framework. Every API route lives under /api/v1 and, when
// authentication is enabled, requires an HS256 bearer token.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server                           │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  Logger (ginzap.Ginzap, "http" logger)                  │  │
//	│  │  Recovery (ginzap.RecoveryWithZap, with stack)          │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  /health                     always open                      │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Router (/api/v1)                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  Authenticator (JWT, only when Auth.Enabled)            │  │
//	│  │  Handlers (registered via callback)                     │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Modes
//
//   - dev: Gin runs in debug mode
//   - prod: Gin runs in release mode
//
// # Server Lifecycle
//
//	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
//	    v1.RegisterHandlers(router, handler)
//	})
//
//	// Blocks until Stop
//	err := srv.Start(ctx)
//
//	// Graceful shutdown, waits for in-flight requests
//	srv.Stop(ctx)
//
// # Authentication
//
// middlewares.Authenticator accepts "Authorization: Bearer <token>" where the token is an
// HS256 JWT signed with Auth.Secret and carrying an expiry. Tokens can be minted with
// middlewares.NewToken or the "taskengine token" command. Rejected requests get 401.
package server
