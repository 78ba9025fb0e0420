// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized implementations can be reused across test packages. Each mock
// exposes function fields for per-test overrides plus simple in-memory
// defaults that behave like the real thing for the common cases.
package mocks
