// Package cryptoutils implements the client-side envelope cipher for notes.
//
// Every note is sealed with AES-256-GCM under its own random key and a fresh
// random 12-byte nonce. Encryption yields two independent artifacts:
//
//   - an Envelope (nonce + ciphertext with tag) that is uploaded and stored
//   - a Key that only ever travels in the share link fragment
//
// The server therefore stores ciphertext it cannot open, and the recipient
// detects any modification made in transit or at rest because GCM
// authenticates the ciphertext.
//
// # Transport Format
//
// Envelopes travel as two codec-encoded fields joined by a period:
//
//	<nonce>.<ciphertext>
//
// which is byte-compatible with WebCrypto AES-GCM output encoded as unpadded
// base64url, so links created by a browser client open with this package and
// vice versa.
//
// # Errors
//
//   - ErrAuthenticationFailure: tag mismatch (wrong key, corruption, tampering)
//   - ErrMalformedEnvelope: text that cannot be split into nonce and ciphertext
//   - ErrInvalidKey: key of the wrong length
//
// None of these ever reach the server; they are local to the recipient.
package cryptoutils
