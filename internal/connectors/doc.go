// Package connectors provides shared client infrastructure for the
// external services the pipeline talks to. Each subpackage knows how to
// build authenticated API clients for one provider family.
package connectors
