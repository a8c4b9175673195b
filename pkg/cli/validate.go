package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/cli/config"
	"github.com/secmon-lab/briareus/pkg/repository/firestore"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
	"github.com/secmon-lab/briareus/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var tenantsCfg config.Tenants
	var firestoreProjectID string
	var firestoreDatabaseID string

	var flags []cli.Flag
	flags = append(flags, tenantsCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "firestore-project-id",
		Usage:       "Firestore Project ID (if specified, connectivity check is performed)",
		Sources:     cli.EnvVars("BRIAREUS_FIRESTORE_PROJECT_ID"),
		Destination: &firestoreProjectID,
	})
	flags = append(flags, &cli.StringFlag{
		Name:        "firestore-database-id",
		Usage:       "Firestore Database ID",
		Sources:     cli.EnvVars("BRIAREUS_FIRESTORE_DATABASE_ID"),
		Destination: &firestoreDatabaseID,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the tenant configuration and optionally check Firestore connectivity",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			file, registry, err := tenantsCfg.Configure()
			if err != nil {
				color.Red("✗ configuration validation failed: %s", tenantsCfg.Path())
				return goerr.Wrap(err, "configuration validation failed")
			}

			color.Green("✓ configuration valid: %s", tenantsCfg.Path())
			fmt.Printf("  %d tenant(s)\n", len(file.Tenants))
			for _, tenant := range registry.Tenants() {
				fmt.Printf("  - %s (%s)\n", tenant.ID, tenant.Name)
			}

			if firestoreProjectID == "" {
				logger.Info("No Firestore project ID specified, skipping connectivity check")
				return nil
			}

			repo, err := firestore.New(ctx, firestoreProjectID, firestoreDatabaseID)
			if err != nil {
				color.Red("✗ Firestore connection failed")
				return goerr.Wrap(err, "failed to initialize Firestore repository")
			}
			defer safe.Close(ctx, repo)

			// A list per tenant both exercises the connection and checks
			// read access to the configured tenants' collections.
			for _, tenant := range registry.Tenants() {
				if _, err := repo.Ticket().List(ctx, tenant.ID); err != nil {
					color.Red("✗ Firestore read failed for tenant %s", tenant.ID)
					return goerr.Wrap(err, "Firestore connectivity check failed",
						goerr.V("tenant_id", tenant.ID))
				}
			}

			color.Green("✓ Firestore connectivity check passed")
			return nil
		},
	}
}
