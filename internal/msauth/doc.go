// Package msauth implements the token lifecycle for authenticating teamtime
// against the Microsoft identity platform.
//
// The package owns three collaborating pieces:
//
//   - Manager: the authentication state machine. It drives silent
//     (refresh-token) acquisition from the persisted cache, falls back to the
//     interactive authorization-code flow, enforces the tenant/domain
//     admission policy, and hands short-lived access tokens to API callers.
//   - CallbackServer: a single-use local HTTP listener that receives the
//     authorization-code redirect during an interactive login. It accepts
//     exactly one callback and is torn down on every exit path.
//   - CacheStore: best-effort durable persistence of the serialized
//     credential blob across process restarts. Cache faults degrade to
//     "re-authenticate next run" and never abort an authentication flow.
//
// # Acquisition order
//
// Authenticate first hydrates the cache and attempts a silent acquisition
// with the stored account. Only when no usable cache exists, or the silent
// attempt fails, does it open the user's browser for an interactive login.
// Both paths request the identical scope set; diverging sets would let a
// silent acquisition succeed with a stale, insufficient grant.
//
// # Admission policy
//
// ValidateTenant and ValidateUser are pure checks against the current
// session. They fail closed: with no session, or with a mismatched tenant or
// username domain, they return false. Callers treat a false result as fatal
// to startup and must discard the session via SignOut.
//
// SECURITY: token values are never logged. Only account identity and flow
// metadata appear in log output.
package msauth
