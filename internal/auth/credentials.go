package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// Credentials are the username and password used for remote login.
type Credentials struct {
	Username string
	Password domain.SecretString
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && !c.Password.IsEmpty()
}

// CredentialSource supplies credentials for remote login. Implementations
// perform no network I/O.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials returns a fixed credential pair. Used programmatically
// and in tests.
type StaticCredentials Credentials

// Credentials returns the fixed pair.
func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials(s), nil
}

// EnvCredentials returns the configured pair as-is, possibly empty, and
// never prompts. This is the source for unattended runs.
type EnvCredentials struct {
	Username string
	Password domain.SecretString
}

// Credentials returns the configured pair.
func (e EnvCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials{Username: e.Username, Password: e.Password}, nil
}

// Prompter reads values from a terminal.
type Prompter interface {
	// Prompt reads one line with echo.
	Prompt(label string) (string, error)
	// PromptSecret reads one line without echo.
	PromptSecret(label string) (string, error)
}

// InteractiveCredentials starts from the configured pair and prompts for
// whichever field is missing.
type InteractiveCredentials struct {
	Username string
	Password domain.SecretString
	Prompter Prompter
}

// Credentials returns the completed pair. An interrupted prompt returns
// domain.ErrUserAborted rather than empty credentials.
func (c InteractiveCredentials) Credentials(ctx context.Context) (Credentials, error) {
	creds := Credentials{Username: c.Username, Password: c.Password}

	if creds.Username == "" {
		if err := ctx.Err(); err != nil {
			return Credentials{}, err
		}
		user, err := c.Prompter.Prompt("Username: ")
		if err != nil {
			return Credentials{}, promptError(err)
		}
		creds.Username = strings.TrimSpace(user)
	}

	if creds.Password.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return Credentials{}, err
		}
		pass, err := c.Prompter.PromptSecret("Password: ")
		if err != nil {
			return Credentials{}, promptError(err)
		}
		creds.Password = domain.SecretString(pass)
	}

	return creds, nil
}

func promptError(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) || errors.Is(err, domain.ErrUserAborted) {
		return fmt.Errorf("read credentials: %w", domain.ErrUserAborted)
	}
	return fmt.Errorf("read credentials: %w", err)
}

// ReadlinePrompter prompts on the controlling terminal. Prompts are written
// to stderr so stdout stays clean for command output.
type ReadlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter creates a prompter. Call Close when done.
func NewReadlinePrompter(stderr io.Writer) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdout:          stderr,
		Stderr:          stderr,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

// Prompt reads a line with echo.
func (p *ReadlinePrompter) Prompt(label string) (string, error) {
	p.rl.SetPrompt(label)
	return p.rl.Readline()
}

// PromptSecret reads a line with echo disabled.
func (p *ReadlinePrompter) PromptSecret(label string) (string, error) {
	b, err := p.rl.ReadPassword(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Close releases the terminal.
func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}
