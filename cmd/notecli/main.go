package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/term"
)

func main() {
	d := deps{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		client: http.DefaultClient,
		isTTY:  func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		readPass: func(prompt string, w io.Writer) ([]byte, error) {
			_, _ = io.WriteString(w, prompt)
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			_, _ = io.WriteString(w, "\n")
			return b, err
		},
	}

	if err := newApp(d).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
