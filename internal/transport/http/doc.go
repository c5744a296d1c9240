// Package http implements HTTP request handlers for the GDP dashboard API.
// It provides a thin layer between HTTP transport and business logic,
// following the clean architecture principle of keeping handlers focused
// solely on HTTP concerns.
//
// Handlers in this package follow these principles:
//
//  1. Thin handlers - minimal logic, delegate to services
//  2. HTTP-only concerns - request parsing, response formatting
//  3. Error transformation - convert service errors to RFC 7807 responses
//  4. No business logic - all logic belongs in the service layer
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Dataset Cache
package http
