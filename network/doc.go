// Package network turns endpoint descriptions into HTTP calls.
//
// An Endpoint describes one logical request. A Configuration aggregates the
// providers for base URL, default headers, timeout and retry policy. BuildRequest
// resolves an Endpoint against a Configuration, and a Dispatcher sends the result
// through a Transport, retries according to the RetryProvider and decodes the
// body into the caller's type.
//
// Request building
//   - URL is the provider base URL followed by the endpoint path, verbatim.
//   - GET parameters become query items, encoded in key order.
//   - POST and PUT send the endpoint body verbatim; parameters are ignored.
//   - Endpoint headers override default headers key by key.
//
// Retries
//   - Transport errors and non-2xx responses consult RetryProvider.ShouldRetry
//     with the number of retries already performed.
//   - Every retry resends the same resolved request; configuration changes made
//     meanwhile only affect calls that start afterwards.
//   - Build failures, decode failures and cancellations are never retried.
//
// Calls are asynchronous. Request and RequestPath return a *Call that resolves
// exactly once and can be canceled; Observers see start, output, completion and
// cancellation events.
package network
