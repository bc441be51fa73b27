// Package invitationapi serves the member-facing invitation endpoints: the
// campus list, flyer previews, the invitation wizard, and attendance
// verification.
package invitationapi
