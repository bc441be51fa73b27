// Package admin derives dashboard figures from invitation and member
// snapshots. Everything except Loader is pure and never mutates its input.
package admin
