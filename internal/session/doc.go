// Package session issues, persists and restores the mock bearer token that stands in for authentication.
//
// # Token format
//
// A token is three dot-separated base64url segments, built and parsed with golang-jwt:
//
//	{"alg":"HS256","typ":"JWT"} . {"username":..,"role":..,"sub":"1","exp":..} . "mock-signature"
//
// The signature is a fixed placeholder. It is never computed or verified, and nothing here provides a security
// guarantee: anyone can mint a token for any role.
//
// # Manager
//
// [Manager] is constructed explicitly over a [Store] (one durable slot) and passed to whatever needs it.
// Invalid credentials are reported with [shared.ErrInvalidCredentials]. A corrupt or expired token is treated as
// "not logged in": the slot is cleared and no error is surfaced.
package session
