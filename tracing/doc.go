// Package tracing wraps OpenTelemetry so kernel services can open spans around
// admission, dispatch and allocation without importing the SDK directly.
// Spans are no-ops until Init or InitWithExporter installs a provider.
package tracing
