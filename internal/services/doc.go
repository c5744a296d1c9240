// Package services implements the business logic layer of the GDP dashboard.
// It provides a clean separation between HTTP handlers and the dataset
// pipeline, ensuring that business rules are centralized and testable.
//
// Services follow these architectural principles:
//
//  1. Interface-driven design for testability
//  2. Context propagation for cancellation and tracing
//  3. Dependency injection for loose coupling
//  4. Domain-focused methods that encapsulate business rules
//
// The package provides these core services:
//
//   - DataService: serves GDP series, growth metrics, and dataset refresh
//   - HealthService: provides system health checks
//
// Services return domain-specific errors that handlers transform into
// RFC 7807 problem responses.
package services
