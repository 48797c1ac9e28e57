package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api/notehandler"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/cmd/flags"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/common"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/sharelink"
)

// maxPlaintextBytes keeps the resulting envelope under the server's body limit.
const maxPlaintextBytes = 512 * 1024

type deps struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	client   *http.Client
	isTTY    func() bool
	readPass func(prompt string, w io.Writer) ([]byte, error)
}

var originFlag = &cli.StringFlag{
	Name:  "origin",
	Usage: "origin used in share links (defaults to --server)",
}

func newApp(d deps) *cli.App {
	return &cli.App{
		Name:      "notecli",
		Usage:     "Create and open one-time encrypted notes",
		Version:   common.Version,
		Writer:    d.stdout,
		ErrWriter: d.stderr,
		Flags:     append([]cli.Flag{flags.ServerURLFlag}, flags.LogFlags...),
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "encrypt a note read from stdin and print its share link",
				Flags:  []cli.Flag{originFlag},
				Action: func(cCtx *cli.Context) error { return createNote(cCtx, d) },
			},
			{
				Name:      "open",
				Usage:     "fetch, destroy and decrypt the note behind a share link",
				ArgsUsage: "<share-link>",
				Action:    func(cCtx *cli.Context) error { return openNote(cCtx, d) },
			},
			{
				Name:   "stats",
				Usage:  "print service usage totals",
				Action: func(cCtx *cli.Context) error { return printStats(cCtx, d) },
			},
		},
	}
}

func createNote(cCtx *cli.Context, d deps) error {
	log := flags.SetupLogger(cCtx)

	plaintext, err := readPlaintext(d)
	if err != nil {
		return err
	}
	if len(plaintext) == 0 {
		return errors.New("note is empty")
	}

	server := cCtx.String(flags.ServerURLFlag.Name)
	origin := cCtx.String(originFlag.Name)
	if origin == "" {
		origin = server
	}

	client := notehandler.NewClient(server, d.client)
	link, err := sharelink.Share(cCtx.Context, client, origin, plaintext)
	if err != nil {
		return err
	}

	log.Debug("Created note", "server", server)
	fmt.Fprintln(d.stdout, link)
	return nil
}

func openNote(cCtx *cli.Context, d deps) error {
	if cCtx.NArg() != 1 {
		return errors.New("expected exactly one share link")
	}

	client := notehandler.NewClient(cCtx.String(flags.ServerURLFlag.Name), d.client)
	plaintext, err := sharelink.Open(cCtx.Context, client, cCtx.Args().First())
	switch {
	case errors.Is(err, sharelink.ErrMalformedLink):
		return fmt.Errorf("invalid link: %w", err)
	case errors.Is(err, interfaces.ErrNoteNotFound):
		return errors.New("note not found or already read")
	case err != nil:
		return err
	}

	_, err = d.stdout.Write(plaintext)
	return err
}

func printStats(cCtx *cli.Context, d deps) error {
	client := notehandler.NewClient(cCtx.String(flags.ServerURLFlag.Name), d.client)
	stats, err := client.Stats(cCtx.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.stdout, "created: %d\nread: %d\nstored: %d\n",
		stats.TotalCreated, stats.TotalRead, stats.CurrentlyStored)
	return nil
}

// readPlaintext prompts without echo on a terminal, otherwise reads stdin to EOF.
func readPlaintext(d deps) ([]byte, error) {
	if d.isTTY() {
		return d.readPass("Note (input hidden): ", d.stderr)
	}

	plaintext, err := io.ReadAll(io.LimitReader(d.stdin, maxPlaintextBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}
	if len(plaintext) > maxPlaintextBytes {
		return nil, fmt.Errorf("note exceeds %d bytes", maxPlaintextBytes)
	}
	return bytes.TrimSuffix(plaintext, []byte("\n")), nil
}
