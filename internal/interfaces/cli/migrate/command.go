package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"payflow/internal/infrastructure/config"
	"payflow/internal/infrastructure/database"
	"payflow/internal/infrastructure/migration"
	"payflow/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply the database schema to both the payment store and the outbox store.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(newUpCommand())

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply the current schema",
		RunE:  runUp,
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database, &cfg.OutboxDB); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	log.Infow("migrating payment store", "database", cfg.Database.Database)
	if err := database.Get().AutoMigrate(migration.PaymentStoreModels()...); err != nil {
		return fmt.Errorf("payment store migration failed: %w", err)
	}

	log.Infow("migrating outbox store", "database", cfg.OutboxDB.Database)
	if err := database.GetOutbox().AutoMigrate(migration.OutboxStoreModels()...); err != nil {
		return fmt.Errorf("outbox store migration failed: %w", err)
	}

	log.Infow("migrations completed")
	return nil
}
