// Package codec converts between raw bytes and the URL-safe text used for
// note envelopes and the key carried in a share link fragment.
//
// The alphabet is unpadded base64url (RFC 4648 section 5): A-Z, a-z, 0-9, '-'
// and '_'. None of these need percent-encoding in a path segment or fragment.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrMalformedEncoding = errors.New("malformed encoding")

var encoding = base64.RawURLEncoding

// Encode returns the URL-safe text form of b. Encode(nil) is "".
func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

// Decode reverses Encode. Input containing characters outside the alphabet,
// padding, or a length no encoder could produce fails with ErrMalformedEncoding.
func Decode(s string) ([]byte, error) {
	b, err := encoding.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return b, nil
}
