package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/newthinker/folio/internal/secrets"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// keyReader reads the API key, hiding input on a terminal.
type keyReader interface {
	ReadKey() (string, error)
	IsTerminal() bool
}

// terminalReader reads from a file descriptor using golang.org/x/term,
// or line by line when it is not a terminal.
type terminalReader struct {
	fd int
	in io.Reader
}

func newTerminalReader(f *os.File) *terminalReader {
	return &terminalReader{fd: int(f.Fd()), in: f}
}

func (r *terminalReader) ReadKey() (string, error) {
	if r.IsTerminal() {
		key, err := term.ReadPassword(r.fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(key)), nil
	}
	line, err := bufio.NewReader(r.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *terminalReader) IsTerminal() bool {
	return term.IsTerminal(r.fd)
}

// configureOptions holds dependencies for the configure command.
type configureOptions struct {
	store  secrets.Store
	reader keyReader
}

func newConfigureCmd(opts configureOptions) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Store the market data API key in the system keyring",
		Long: `Store the market data API key in the system keyring.

The key is read without echo when stdin is a terminal, or as one line
from stdin otherwise. ` + secrets.EnvAPIKey + ` overrides the stored key.

Example:
  folio configure
  echo "$KEY" | folio configure
  folio configure --delete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				return runDeleteKey(cmd, opts)
			}
			return runConfigure(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "remove the stored API key")
	cmd.SilenceUsage = true

	return cmd
}

func runConfigure(cmd *cobra.Command, opts configureOptions) error {
	out := cmd.OutOrStdout()

	if opts.reader.IsTerminal() {
		fmt.Fprint(out, "Enter your API key: ")
	}
	key, err := opts.reader.ReadKey()
	if opts.reader.IsTerminal() {
		fmt.Fprintln(out)
	}
	if err != nil {
		return fmt.Errorf("reading api key: %w", err)
	}
	if key == "" {
		return fmt.Errorf("api key cannot be empty")
	}

	if err := opts.store.Set(secrets.ServiceName, secrets.KeyAPIKey, key); err != nil {
		return fmt.Errorf("storing api key: %w", err)
	}

	fmt.Fprintln(out, "API key saved to keyring")
	return nil
}

func runDeleteKey(cmd *cobra.Command, opts configureOptions) error {
	if err := opts.store.Delete(secrets.ServiceName, secrets.KeyAPIKey); err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "API key removed from keyring")
	return nil
}

func init() {
	rootCmd.AddCommand(newConfigureCmd(configureOptions{
		store:  secrets.NewSystemStore(),
		reader: newTerminalReader(os.Stdin),
	}))
}
