// Package cli implements the credauth command-line client:
//
//	credauth [flags] register|login|whoami
//
// Prompts go to the configured writer; passwords are read without echo.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/credauth/internal/authrpc"
	"github.com/dmitrijs2005/credauth/internal/client/client"
	"github.com/dmitrijs2005/credauth/internal/client/config"
	"github.com/dmitrijs2005/credauth/internal/filex"
	"github.com/dmitrijs2005/credauth/internal/flagx"
)

// AuthClient is the subset of client.GRPCClient the commands use.
type AuthClient interface {
	Register(ctx context.Context, email, password, confirmation, firstName, lastName string) (*authrpc.Account, error)
	Login(ctx context.Context, email, password string) (*authrpc.LoginResponse, error)
	WhoAmI(ctx context.Context) (*authrpc.WhoAmIResponse, error)
	SetAccessToken(token string)
	Close() error
}

var ErrUnknownCommand = errors.New("unknown command")

type App struct {
	config *config.Config
	client AuthClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewAuthClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, ac AuthClient, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: ac, reader: bufio.NewReader(in), out: out}
}

// Run dispatches the subcommand found in args (flags excluded).
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.client.Close()

	cmd, _ := flagx.SplitCommand(args, config.FlagsWithValues)

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	default:
		fmt.Fprintln(a.out, "usage: credauth [-a addr] [-c config.json] register|login|whoami")
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

func (a *App) Register(ctx context.Context) error {

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	firstName, err := GetSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	lastName, err := GetSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	confirmation, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}

	acc, err := a.client.Register(ctx, email, password, confirmation, firstName, lastName)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(a.out, "Registered %s (id=%s)\n", acc.Email, acc.ID)
	return nil

}

// Login stores the access token in the configured token file.
func (a *App) Login(ctx context.Context) error {

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := filex.WritePrivate(a.config.TokenFile, []byte(resp.AccessToken)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	name := strings.TrimSpace(resp.Account.FirstName + " " + resp.Account.LastName)
	if name == "" {
		name = resp.Account.Email
	}
	fmt.Fprintf(a.out, "Login successful, welcome %s\n", name)
	return nil

}

func (a *App) WhoAmI(ctx context.Context) error {

	token, err := os.ReadFile(a.config.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return client.ErrNotLoggedIn
		}
		return fmt.Errorf("read token: %w", err)
	}
	a.client.SetAccessToken(strings.TrimSpace(string(token)))

	me, err := a.client.WhoAmI(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (id=%s)\n", me.Email, me.ID)
	return nil

}
