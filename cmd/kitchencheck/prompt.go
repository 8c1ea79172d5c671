package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/model"
)

var stdin = bufio.NewReader(os.Stdin)

func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword hides input on a terminal and falls back to a plain line
// when stdin is piped.
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}
	fmt.Fprint(os.Stderr, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// login asks for credentials and returns the session for them. When role is
// set the user must hold it.
func (a *app) login(ctx context.Context, email string, role model.Role) (auth.Session, error) {
	users, err := a.store.CountUsers(ctx)
	if err != nil {
		return auth.Session{}, err
	}
	if users == 0 {
		return auth.Session{}, errors.New("no users yet, create one with: kitchencheck user add --role manager")
	}

	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return auth.Session{}, err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return auth.Session{}, err
	}

	user, err := a.store.Authenticate(ctx, email, password)
	if err != nil {
		return auth.Session{}, err
	}
	session := auth.SessionFor(user)
	if role != "" {
		if err := auth.RequireRole(session, role); err != nil {
			return auth.Session{}, fmt.Errorf("%s: %w", user.Email, err)
		}
	}
	return session, nil
}
