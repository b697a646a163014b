// Package testing provides test utilities for code built on go-netmanager.
//
// # Mocks
//
// The mocks subpackage provides testify-based implementations of the network
// interfaces:
//   - network.Transport (MockTransport), recording every resolved request
//   - network.Observer (RecordingObserver), recording lifecycle events in order
//
// # Fixtures
//
// The fixtures subpackage provides pre-configured mocks and configurations for
// common scenarios:
//   - transports that succeed, fail, or succeed after a number of failures
//   - a static network configuration and a loaded application configuration
//
// # Usage
//
//	import (
//		"github.com/gaborage/go-netmanager/testing/fixtures"
//		"github.com/gaborage/go-netmanager/testing/mocks"
//	)
//
//	transport := fixtures.NewFlakyTransport(1, http.StatusServiceUnavailable, `{"id":7}`)
//	d := network.NewDispatcher(fixtures.NewStaticConfiguration(2), logger.Nop(),
//		network.WithTransport(transport))
//
// In-memory OpenTelemetry providers live in observability/testing.
package testing
