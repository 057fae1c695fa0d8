package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/signin/internal/config"
	"github.com/nfrund/signin/internal/database"
	"github.com/nfrund/signin/internal/domain"
	"github.com/nfrund/signin/internal/signin"
	"github.com/spf13/cobra"
)

// userRepository opens the configured user store. Tests replace it.
var userRepository = func(ctx context.Context, cfg config.Provider) (domain.UserRepository, func(), error) {
	if cfg.GetAuthBackend() != config.BackendSurreal {
		return nil, nil, fmt.Errorf("user management needs a persistent backend, AUTH_BACKEND is %q", cfg.GetAuthBackend())
	}
	db, err := database.NewDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close(context.Background()) }
	return database.NewUserStore(db, cfg.GetDBUrl(), cfg.GetDBNs(), cfg.GetDBDb()), closeDB, nil
}

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	user.AddCommand(newUserCreateCmd())
	return user
}

func newUserCreateCmd() *cobra.Command {
	var email, password string
	var timeout time.Duration

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account that can sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := signin.Form{Email: strings.TrimSpace(email), Password: password}
			if !form.Valid() {
				return errors.New("a valid --email and a non-empty --password are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			users, closeRepo, err := userRepository(ctx, config.New())
			if err != nil {
				return err
			}
			defer closeRepo()

			creds := form.Credentials()
			_, err = users.CreateUser(ctx, creds.Email, creds.Password)
			if errors.Is(err, domain.ErrUserAlreadyExists) {
				return fmt.Errorf("an account for %s already exists", creds.Email)
			}
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", creds.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "account email")
	create.Flags().StringVar(&password, "password", "", "account password")
	create.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "time allowed for the backend to respond")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	return create
}
