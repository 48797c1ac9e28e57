// Package sharelink implements the client side of note sharing: encrypt
// locally, upload only the envelope, and carry the key in the URL fragment.
//
// A share link looks like
//
//	https://notes.example.com/n/k3v9x0c2m1q8z7aa#<key>
//
// User agents never send the fragment to the server, which is what keeps the
// key out of the service's hands.
package sharelink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/cryptoutils"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

// PathPrefix is the path segment that precedes the note id in a share link.
const PathPrefix = "/n/"

// ErrMalformedLink means the link lacks a note id or a usable key fragment.
var ErrMalformedLink = errors.New("malformed share link")

// NoteClient is the subset of the note API a share link needs.
type NoteClient interface {
	CreateNote(ctx context.Context, envelope string) (interfaces.NoteID, error)
	ReadNote(ctx context.Context, id interfaces.NoteID) (string, error)
}

// Share encrypts plaintext under a fresh key, stores the envelope and returns
// the share link for origin.
func Share(ctx context.Context, client NoteClient, origin string, plaintext []byte) (string, error) {
	env, key, err := cryptoutils.Encrypt(plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt note: %w", err)
	}

	id, err := client.CreateNote(ctx, env.String())
	if err != nil {
		return "", fmt.Errorf("failed to create note: %w", err)
	}

	return FormatLink(origin, id, key), nil
}

// FormatLink builds "<origin>/n/<id>#<key>".
func FormatLink(origin string, id interfaces.NoteID, key cryptoutils.Key) string {
	return strings.TrimSuffix(origin, "/") + PathPrefix + url.PathEscape(id.String()) + "#" + key.String()
}

// ParseLink extracts the note id and key from a share link. It never touches
// the network.
func ParseLink(link string) (interfaces.NoteID, cryptoutils.Key, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedLink, err)
	}

	idx := strings.LastIndex(u.Path, PathPrefix)
	if idx < 0 {
		return "", nil, fmt.Errorf("%w: no note id", ErrMalformedLink)
	}
	id := strings.Trim(u.Path[idx+len(PathPrefix):], "/")
	if id == "" || strings.Contains(id, "/") {
		return "", nil, fmt.Errorf("%w: no note id", ErrMalformedLink)
	}

	if u.Fragment == "" {
		return "", nil, fmt.Errorf("%w: no key", ErrMalformedLink)
	}
	key, err := cryptoutils.ParseKey(u.Fragment)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformedLink, err)
	}

	return interfaces.NoteID(id), key, nil
}

// Open parses link, takes the note and decrypts it. The note is destroyed on
// the server even if decryption fails afterwards.
//
// Errors: ErrMalformedLink before any request is made; interfaces.ErrNoteNotFound
// if the note is gone; cryptoutils errors if the envelope does not open.
func Open(ctx context.Context, client NoteClient, link string) ([]byte, error) {
	id, key, err := ParseLink(link)
	if err != nil {
		return nil, err
	}

	envelope, err := client.ReadNote(ctx, id)
	if err != nil {
		return nil, err
	}

	env, err := cryptoutils.ParseEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	return cryptoutils.Decrypt(env, key)
}
