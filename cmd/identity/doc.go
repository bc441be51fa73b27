// Package identity owns member profiles: who a user is, which role they hold,
// and how their password is checked.
//
// Role decisions made elsewhere (who may verify attendance, who sees the admin
// view) read the Role carried by User.
package identity
