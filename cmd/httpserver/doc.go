// Command httpserver runs the one-time note service.
//
// It stores encrypted envelopes, hands each out exactly once and keeps usage
// totals in one or more storage backends.
//
// Usage:
//
//	httpserver --listen-addr 0.0.0.0:3000 \
//	  --note-store sqlite:///var/lib/myprivatenote/notes.db \
//	  --counters-backend file:///var/lib/myprivatenote
//
//	httpserver --config /etc/myprivatenote/config.yaml
//
// Every flag can also be set through a MYPRIVATENOTE_* environment variable;
// PORT is honoured when --listen-addr is not given.
//
// On SIGINT or SIGTERM the server marks itself not ready, waits for
// --drain-seconds, stops accepting requests and writes the final usage totals.
package main
