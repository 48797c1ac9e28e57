// Command notecli creates and opens one-time notes from a terminal.
//
// It performs the same steps as the browser client: the note is encrypted
// locally, only the envelope is uploaded, and the key is placed in the share
// link fragment.
//
//	echo "db password: hunter2" | notecli --server https://notes.example.com create
//	notecli --server https://notes.example.com open 'https://notes.example.com/n/k3v9...#...'
//	notecli stats
package main
