// Package accessgate is the access control plane for the trading API: it
// authenticates every inbound request, manages the lifecycle of bearer
// credentials, and enforces per-endpoint-tier admission limits before any
// business logic runs.
//
// The [Plane] is the service object behind the gate. It owns the credential
// store (sessions and outstanding refresh records), the token authority, the
// rate limiter, and the background sweeper that reclaims expired state.
// Route handlers never touch these directly; they sit behind the middleware
// package and receive an allow/deny verdict plus the verified session.
//
// Construction goes through the [Builder]:
//
//	plane, err := accessgate.New().
//		WithConfig(cfg).
//		WithRedis(client). // optional; defaults to in-memory maps
//		Build()
//
// Time is injectable throughout (WithNow), so tests simulate elapsed time
// deterministically instead of waiting on real timers.
package accessgate
