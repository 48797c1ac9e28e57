/*
Package api holds the wire types and server configuration shared by the note
service and its clients.

The HTTP surface is small:

	POST /notes      {"encryptedPayload": "..."}  -> {"id": "..."}
	GET  /notes/{id}                              -> {"encryptedPayload": "..."}
	GET  /stats                                   -> {"totalCreated", "totalRead", "currentlyStored"}

The server only ever sees envelopes. Keys travel in the fragment of the share
link, which browsers and the notecli client never send, so a note can only be
decrypted by whoever holds the full link.

A note is handed out once. Unknown identifiers, malformed identifiers and notes
that were already read all produce the same 404 response.

Subpackages:
  - notehandler: request handlers and the matching HTTP client
*/
package api
