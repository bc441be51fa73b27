// Package session signs members in and out.
//
// Signing in creates a server-side session row and issues a short-lived
// PASETO v4.public access token naming that session. Every request re-checks
// the row, so signing out (revoking the row) takes effect immediately even for
// tokens that have not expired.
package session
