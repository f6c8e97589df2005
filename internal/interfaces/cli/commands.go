// Package cli holds the administrative commands of yatubectl.
// Authors and groups have no sign-up or editing pages on the site, so they
// are managed from here.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yatube/backend/internal/application/identity"
	"github.com/yatube/backend/internal/application/posts"
)

// UserAdmin manages author accounts
type UserAdmin interface {
	Create(ctx context.Context, input identity.CreateUserInput) (*identity.UserInfo, error)
	Delete(ctx context.Context, username string) error
	SetPassword(ctx context.Context, username, password string) error
	SetActive(ctx context.Context, username string, active bool) error
}

// GroupAdmin manages groups
type GroupAdmin interface {
	Create(ctx context.Context, req posts.CreateGroupRequest) (*posts.GroupResponse, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) ([]posts.GroupResponse, error)
}

// App is what the commands operate on
type App struct {
	Users  UserAdmin
	Groups GroupAdmin
}

// Opener connects to the database and returns the App plus a cleanup func.
// Commands call it lazily so --help works without a database.
type Opener func(ctx context.Context) (*App, func(), error)

// NewRootCommand builds the yatubectl command tree
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "yatubectl",
		Short:         "Yatube administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		createUserCmd(open),
		deleteUserCmd(open),
		setPasswordCmd(open),
		setActiveCmd(open, "activate", "Allow a user to log in again", true),
		setActiveCmd(open, "deactivate", "Forbid a user to log in and end their sessions", false),
		createGroupCmd(open),
		deleteGroupCmd(open),
		groupsCmd(open),
	)
	return root
}

func withApp(cmd *cobra.Command, open Opener, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, app)
}

func createUserCmd(open Opener) *cobra.Command {
	var input identity.CreateUserInput
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "createuser <username>",
		Short: "Create an author account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Username = args[0]
			password, err := resolvePassword(cmd, input.Password, passwordStdin)
			if err != nil {
				return err
			}
			input.Password = password

			return withApp(cmd, open, func(ctx context.Context, app *App) error {
				user, err := app.Users.Create(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Password, "password", "", "password for the new account")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name shown on the profile")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name shown on the profile")
	return cmd
}

func deleteUserCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteuser <username>",
		Short: "Delete an author together with their posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, app *App) error {
				if err := app.Users.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
				return nil
			})
		},
	}
}

func setPasswordCmd(open Opener) *cobra.Command {
	var password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "setpassword <username>",
		Short: "Replace a user's password and end their sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := resolvePassword(cmd, password, passwordStdin)
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(ctx context.Context, app *App) error {
				if err := app.Users.SetPassword(ctx, args[0], password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Changed password of %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func setActiveCmd(open Opener, use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, app *App) error {
				if err := app.Users.SetActive(ctx, args[0], active); err != nil {
					return err
				}
				state := "inactive"
				if active {
					state = "active"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s is now %s\n", args[0], state)
				return nil
			})
		},
	}
}

func createGroupCmd(open Opener) *cobra.Command {
	var req posts.CreateGroupRequest

	cmd := &cobra.Command{
		Use:   "creategroup <title>",
		Short: "Create a group",
		Long:  "Create a group. Without --slug one is derived from the title.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[0]
			return withApp(cmd, open, func(ctx context.Context, app *App) error {
				group, err := app.Groups.Create(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created group %q at /group/%s/\n", group.Title, group.Slug)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&req.Description, "description", "", "group description")
	return cmd
}

func deleteGroupCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "deletegroup <slug>",
		Short: "Delete a group together with its posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, app *App) error {
				if err := app.Groups.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", args[0])
				return nil
			})
		},
	}
}

func groupsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, app *App) error {
				groups, err := app.Groups.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSLUG\tTITLE")
				for _, g := range groups {
					fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
				}
				return w.Flush()
			})
		},
	}
}

// resolvePassword returns the --password value, or the first stdin line
// when --password-stdin is set
func resolvePassword(cmd *cobra.Command, flagValue string, fromStdin bool) (string, error) {
	password := flagValue
	if fromStdin {
		line, err := readLine(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = line
	}
	if password == "" {
		return "", errors.New("a password is required: use --password or --password-stdin")
	}
	return password, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
