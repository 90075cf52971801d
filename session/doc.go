// Package session holds the credential store: the server-side Session records
// and the outstanding refresh-token records behind the accessgate token
// authority.
//
// Two [Store] implementations are provided. [MemoryStore] keeps mutex-guarded
// in-process maps and is the default. [RedisStore] externalizes the same
// state to Redis for multi-instance deployments. Both make every operation
// individually atomic, so a concurrent sweep and validate resolve to either
// "session found" or "session not found", never a partial record.
//
// # What this package must NOT do
//
//   - Verify token signatures (that is the jwt package).
//   - Decide admission (that is the rate package).
package session
