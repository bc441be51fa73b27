// Package password hashes and verifies member passwords with Argon2id.
//
// Hashes are PHC strings: $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>.
package password
