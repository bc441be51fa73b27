// Package authapi serves the member sign-up and sign-in endpoints and the
// bearer-token middleware that builds each request's auth.Principal.
package authapi
