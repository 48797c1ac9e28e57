// Package interfaces defines the contracts between the note service components,
// separating interface definitions from implementations.
//
// # Note Interfaces
//
// NoteStore: Holds note envelopes and hands each one out at most once
// (memory, SQLite and PostgreSQL implementations live in package notestore).
//
// IDGenerator: Produces the unguessable identifiers under which notes are stored.
//
// # Storage Interfaces
//
// StorageBackend: Keeps small, wholesale-overwritten records such as the usage
// counters (file, S3 and Vault implementations live in package storage).
//
// StorageBackendFactory: Creates storage backends from URI strings and manages
// multi-backend configurations for redundant storage.
//
// # Errors
//
// ErrNoteNotFound, ErrContentNotFound, ErrBackendUnavailable and
// ErrInvalidLocationURI are sentinel errors; implementations wrap them with %w.
package interfaces
