// Package backend provides the Perch messaging API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/chat: Messaging core (feeds, unread counts, visits, files)
// - internal/models: Data models and database schemas
// - internal/websocket: WebSocket server for real-time updates
// - internal/database: Database connection and migrations
// - internal/cache: Redis client and channel metadata cache
// - internal/middleware: HTTP middleware (auth, rate limiting, metrics)
// - internal/seed: Development and test data seeding

// See the individual package documentation for detailed API reference.
package backend
