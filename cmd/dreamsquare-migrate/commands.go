package main

import (
	"context"
	"fmt"
	"os"
	"time"

	identity_adapter "dreamsquare-service/internal/adapters/identity"
	mongodb_adapter "dreamsquare-service/internal/adapters/mongodb"
	postgres_adapter "dreamsquare-service/internal/adapters/postgres"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/migrations"
	"dreamsquare-service/pkg/mongodb"
	"dreamsquare-service/pkg/postgres"

	"github.com/spf13/cobra"
)

const commandTimeout = 2 * time.Minute

func upCmd() *cobra.Command {
	var (
		databaseURL string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: databaseURL, MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator, err := postgres_adapter.NewMigrator(pool, migrations.FS)
			if err != nil {
				return err
			}

			var names []string
			if dryRun {
				names, err = migrator.Pending(ctx)
			} else {
				names, err = migrator.Up(ctx)
			}
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			}
			verb := "Applied"
			if dryRun {
				verb = "Pending"
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verb, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}

func mongoIndexesCmd() *cobra.Command {
	var uri, database string

	cmd := &cobra.Command{
		Use:   "mongo-indexes",
		Short: "Create MongoDB indexes used by the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uri == "" {
				return fmt.Errorf("--uri or MONGO_URI is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			client, db, err := mongodb.NewClient(ctx, mongodb.Config{URI: uri, Database: database})
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			names, err := mongodb_adapter.EnsureIndexes(ctx, db)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "Index: %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", os.Getenv("MONGO_URI"), "MongoDB connection string")
	cmd.Flags().StringVar(&database, "database", envOr("MONGO_DATABASE", "realEstateDb"), "MongoDB database name")
	return cmd
}

// devTokenCmd выпускает токен для AUTH_PROVIDER=jwt, чтобы дергать API локально.
func devTokenCmd() *cobra.Command {
	var (
		signingKey string
		email      string
		uid        string
		role       string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Issue a signed JWT for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			verifier, err := identity_adapter.NewJWTVerifier(signingKey)
			if err != nil {
				return err
			}
			if uid == "" {
				uid = email
			}
			token, err := verifier.IssueToken(domain.Principal{UID: uid, Email: email, Role: role}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&signingKey, "signing-key", os.Getenv("JWT_SIGNING_KEY"), "HMAC key shared with the service")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&uid, "uid", "", "subject claim, defaults to email")
	cmd.Flags().StringVar(&role, "role", "", "role claim (informational, the service reads roles from storage)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
