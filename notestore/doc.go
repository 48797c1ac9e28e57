// Package notestore holds encrypted note envelopes until their first read.
//
// Every backend implements interfaces.NoteStore with an atomic take: the
// memory store under a mutex, SQLite and PostgreSQL with a single
// DELETE ... RETURNING statement.
package notestore
