package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	sqliteadapter "github.com/ericfisherdev/peerportal/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/peerportal/internal/application"
	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// profilePrefix keeps CLI scopes apart from browser session ids.
const profilePrefix = "cli:"

// sessionAdmin is the operator view of the store. Only the SQLite store
// implements it.
type sessionAdmin interface {
	List(ctx context.Context) ([]sqliteadapter.SessionInfo, error)
	PurgeIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

type deps struct {
	stores   driven.SessionStores
	sessions sessionAdmin
	verifier driven.IdentityVerifier
	auth     driven.Authenticator
	logger   *slog.Logger
	out      io.Writer
}

func newApp(d *deps) *cli.App {
	return &cli.App{
		Name:      "peerctl",
		Usage:     "sign in to the 360 peer-review backend and inspect the cached session",
		Writer:    d.out,
		ErrWriter: d.out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Value:   "default",
				Usage:   "session profile to use",
				EnvVars: []string{"PEERCTL_PROFILE"},
			},
		},
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "exchange credentials for a token and cache it in the profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Required: true, Usage: "teacher, student or master"},
					&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "user id"},
					&cli.StringFlag{Name: "password", EnvVars: []string{"PEERCTL_PASSWORD"}, Required: true, Usage: "password"},
				},
				Action: d.login,
			},
			{
				Name:  "whoami",
				Usage: "revalidate the cached credential and print the identity",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "allow", Aliases: []string{"a"}, Usage: "roles allowed; empty admits any role"},
				},
				Action: d.whoami,
			},
			{
				Name:  "nav",
				Usage: "print the navigation of a role",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Required: true},
				},
				Action: d.nav,
			},
			{
				Name:   "logout",
				Usage:  "clear the cached credential of the profile",
				Action: d.logout,
			},
			{
				Name:   "sessions",
				Usage:  "list stored sessions",
				Action: d.listSessions,
			},
			{
				Name:  "purge",
				Usage: "delete sessions idle for longer than --idle",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "idle", Value: 720 * time.Hour},
				},
				Action: d.purge,
			},
		},
	}
}

func (d *deps) store(c *cli.Context) driven.CredentialStore {
	return d.stores.ForSession(profilePrefix + c.String("profile"))
}

func (d *deps) guard(c *cli.Context) *application.AccessGuard {
	return application.NewAccessGuard(d.store(c), d.verifier, d.logger.With("profile", c.String("profile")))
}

func (d *deps) login(c *cli.Context) error {
	svc := application.NewLoginService(d.auth, d.logger)
	next, err := svc.Login(c.Context, d.store(c), model.LoginRequest{
		Role:     model.Role(c.String("role")),
		UserID:   c.String("user"),
		Password: c.String("password"),
	})
	if errors.Is(err, driven.ErrInvalidCredential) {
		return cli.Exit("login rejected: wrong user id or password", 1)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "signed in, continue at %s\n", next)
	return nil
}

func (d *deps) whoami(c *cli.Context) error {
	var allowed []model.Role
	for _, r := range c.StringSlice("allow") {
		for part := range strings.SplitSeq(r, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			role := model.Role(part)
			if !role.Known() {
				return cli.Exit(fmt.Sprintf("unknown role %q: use teacher, student or master", part), 2)
			}
			allowed = append(allowed, role)
		}
	}

	guard := d.guard(c)
	decision := guard.CheckAccess(c.Context, allowed)
	if decision.Redirect {
		return cli.Exit(fmt.Sprintf("not signed in: %s, sign in again with: peerctl login", decision.String()), 1)
	}

	snap := guard.Snapshot(c.Context)
	fmt.Fprintf(d.out, "%s｜%s (%s)\n", application.RoleLabel(snap.Role), snap.Name(), snap.UserID)
	printNav(d.out, snap.Role)
	return nil
}

func (d *deps) nav(c *cli.Context) error {
	role := model.Role(c.String("role"))
	if !role.Known() {
		return cli.Exit(fmt.Sprintf("unknown role %q: use teacher, student or master", role), 2)
	}
	printNav(d.out, role)
	return nil
}

func (d *deps) logout(c *cli.Context) error {
	d.guard(c).Logout(c.Context)
	fmt.Fprintln(d.out, "signed out")
	return nil
}

func (d *deps) listSessions(c *cli.Context) error {
	if d.sessions == nil {
		return cli.Exit("session listing needs the sqlite store", 1)
	}
	sessions, err := d.sessions.List(c.Context)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tROLE\tUSER\tTOKEN\tUPDATED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", s.SessionID, s.Role, s.UserID, s.HasToken, s.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (d *deps) purge(c *cli.Context) error {
	if d.sessions == nil {
		return cli.Exit("purge needs the sqlite store", 1)
	}
	n, err := d.sessions.PurgeIdle(c.Context, time.Now().Add(-c.Duration("idle")))
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "purged %d rows\n", n)
	return nil
}

func printNav(w io.Writer, role model.Role) {
	for _, e := range application.ResolveNav(role) {
		fmt.Fprintf(w, "  %-16s %s\n", e.Target, e.Label)
	}
}

// exitCode returns the code carried by a cli.Exit error, 1 otherwise.
func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
