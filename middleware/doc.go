// Package middleware adapts the access control plane to net/http handler
// chains.
//
// The gate evaluates every request in a fixed order: rate admission first,
// then credential validation, then capability check. The order is a security
// property. Rate limiting runs before authentication so that an attacker
// cannot burn signature verifications faster than the tier budget allows,
// and a denial at any stage short-circuits the rest of the chain.
//
// What this package must NOT do:
//   - mutate plane state directly; all writes go through plane operations
//   - leak token contents into response bodies or headers
//   - reorder the gate stages
package middleware
