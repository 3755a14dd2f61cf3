package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/migrations"
)

// migrationsFS is the embedded schema unless dir points elsewhere.
func migrationsFS(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrationsFS(dir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationsFS(dir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			renderMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(statusCmd)

	return cmd
}

func riskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Inspect and maintain questionnaire risk levels",
	}

	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Re-score every questionnaire with the current rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			ctx := context.Background()
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.pool.Close()

			report, err := a.questionnaires.RecomputeAll(ctx, dryRun)
			if err != nil {
				return err
			}
			renderRecompute(cmd.OutOrStdout(), report)
			return nil
		},
	}
	recompute.Flags().Bool("dry-run", false, "Report changes without writing them")
	cmd.AddCommand(recompute)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Count completed questionnaires per risk level",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.pool.Close()

			stats, err := a.questionnaires.Statistics(ctx)
			if err != nil {
				return err
			}
			renderStatistics(cmd.OutOrStdout(), stats)
			return nil
		},
	})

	return cmd
}

func dentistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dentist",
		Short: "Manage dentist accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dentist account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			admin, _ := cmd.Flags().GetBool("admin")
			if password == "" {
				password = os.Getenv("DENTIST_PASSWORD")
			}

			ctx := context.Background()
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.pool.Close()

			d, err := a.dentists.Create(ctx, name, email, password, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created dentist %d (%s)\n", d.ID, d.Email)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Display name")
	createCmd.Flags().String("email", "", "Login email")
	createCmd.Flags().String("password", "", "Initial password (or set DENTIST_PASSWORD)")
	createCmd.Flags().Bool("admin", false, "Grant the admin role")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("email")
	cmd.AddCommand(createCmd)

	return cmd
}

// kioskTokenCmd mints a long-lived token for a reception tablet. It needs
// only configuration, not a database.
func kioskTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kiosk-token <name>",
		Short: "Issue an access token for a reception kiosk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET must be set to issue kiosk tokens")
			}
			if ttl <= 0 {
				ttl = cfg.KioskTokenTTL
			}

			key, _, err := resolveSigningKey(cfg.JWTSecret)
			if err != nil {
				return err
			}
			issuer := authIssuer(key, cfg.JWTTTL)
			tok, exp, err := issuer.IssueKiosk(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().Duration("ttl", 0, "Token lifetime (default KIOSK_TOKEN_TTL)")
	return cmd
}
