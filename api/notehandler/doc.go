// Package notehandler serves the note API and provides the matching client.
//
// A note is created by posting an envelope and read by taking it: the first
// successful GET of /notes/{id} returns the envelope and destroys it. Every
// other outcome of a read, including a malformed id, is the same 404.
package notehandler
