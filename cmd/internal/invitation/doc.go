// Package invitation holds the invitation record, its public token, and the
// one-way attendance transition performed when a host scans a guest's code.
//
// A record is created once by the wizard with status "sent" and changes at most
// once afterwards, to "attended", through Store.MarkAttended. The transition is
// conditional on the current status, so concurrent scans of the same code
// confirm it exactly once and never move attended_at.
package invitation
