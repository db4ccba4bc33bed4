// Package middleware exposes HTTP middleware adapters over
// secureauth.Engine access-token validation.
//
// # Guards
//
//   - [RequireAccess] — stateless token verification, no store call.
//   - [RequireLiveSession] — token verification plus a session store read,
//     rejecting tokens whose session has been revoked.
//
// Each guard reads the Authorization header, validates the bearer token, and
// injects the verified [secureauth.AccessInfo] into the request context.
//
// This package translates HTTP semantics into Engine calls; it makes no
// authorization decision beyond the Engine's pass or reject.
package middleware
