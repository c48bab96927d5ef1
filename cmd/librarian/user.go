package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"librarian/internal/domain/entity"
	"librarian/internal/domain/repository"
	"librarian/internal/errors"
	"librarian/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewUserCmd creates the user administration subcommand.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administer staff accounts",
	}

	var role string
	promote := &cobra.Command{
		Use:   "set-role EMAIL",
		Short: "Change the role of a staff account",
		Long: `Change the role of a staff account directly in the database.
Accounts registered through the API are librarians, so the first admin
is created here.`,
		Example: "  librarian user set-role ana@example.com --role admin",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseRole(role)
			if err != nil {
				return err
			}

			return withDatabase(cmd.Context(), func(db *gorm.DB) error {
				user, err := setUserRole(cmd.Context(), postgres.NewUserRepository(db), args[0], target)
				if err != nil {
					return err
				}
				cmd.Printf("%s is now %s\n", user.Email, user.Role)

				return nil
			})
		},
	}
	promote.Flags().StringVar(&role, "role", string(entity.RoleAdmin), "role to assign (admin or librarian)")
	cmd.AddCommand(promote)

	return cmd
}

func parseRole(raw string) (entity.Role, error) {
	role := entity.Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", errors.Errorf("unknown role %q", raw)
	}

	return role, nil
}

func setUserRole(ctx context.Context, users repository.UserRepository, email string, role entity.Role) (*entity.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	user, err := users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Errorf("no user with email %q", email)
		}

		return nil, errors.Wrap(err, "find user")
	}

	if user.Role == role {
		return user, nil
	}

	previous := user.Role
	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	if err := users.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "update user")
	}

	slog.Info("User role changed",
		slog.String("email", user.Email),
		slog.String("from", previous.String()),
		slog.String("to", role.String()),
	)

	return user, nil
}
