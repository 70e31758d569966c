// Command orphan_sweep deletes principals whose registration never
// produced a profile.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"roflexi/internal/config"
	"roflexi/internal/database"
	"roflexi/internal/modules/identity"
	"roflexi/internal/modules/provisioning"
	"roflexi/internal/pkg/cache"
	jwtsvc "roflexi/internal/pkg/jwt"
	"roflexi/internal/pkg/logger"
	"roflexi/internal/repository"
)

func main() {
	var (
		dryRun bool
		grace  time.Duration
	)

	cmd := &cobra.Command{
		Use:          "orphan_sweep",
		Short:        "Delete principals left without a profile",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("grace") {
				grace = cfg.OrphanGracePeriod
			}

			zlog, err := logger.New(cfg.AppEnv)
			if err != nil {
				return err
			}
			defer func() { _ = zlog.Sync() }()

			db, err := database.ConnectWithLogger(cfg.DatabaseURL, zlog)
			if err != nil {
				return fmt.Errorf("db connect failed: %w", err)
			}

			principals := repository.NewPrincipalRepository(db)
			profiles := repository.NewProfileRepository(db)
			// the sweep only deletes, so no token ledger is needed
			idp := identity.NewService(principals, jwtsvc.New(cfg.JWTSecret, cfg.BootstrapTokenTTL, cfg.SessionTokenTTL), cache.NewMemory())

			sweeper := provisioning.NewSweeper(principals, profiles, idp, zlog)
			uids, err := sweeper.Sweep(cmd.Context(), time.Now().UTC().Add(-grace), dryRun)
			if err != nil {
				return err
			}

			zlog.Info("orphan sweep completed",
				zap.Int("count", len(uids)),
				zap.Bool("dry_run", dryRun),
				zap.Duration("grace", grace),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report orphans")
	cmd.Flags().DurationVar(&grace, "grace", 15*time.Minute, "minimum principal age before it counts as orphaned")

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
