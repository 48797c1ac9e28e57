// Package storage keeps small mutable records, such as the usage counter
// snapshot, in pluggable backends.
//
// Backends are selected by URI:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/myprivatenote/
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/prefix/?region=us-west-2&endpoint=http://minio:9000
//   - vault://vault.example.com:8200/secret/myprivatenote?token=...
//
// # Replacement semantics
//
// A record is always replaced whole. The file backend writes a temporary file
// and renames it over the old one; S3 puts and Vault KV v2 writes are whole
// object replacements by nature. A reader therefore never sees a torn record.
//
// # Redundancy
//
// Several locations can be combined with StorageBackendFactory.CreateMultiBackend.
// Stores go to every available backend and succeed if any one does; fetches are
// served by the first backend holding the record.
package storage
