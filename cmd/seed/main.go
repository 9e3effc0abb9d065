// Command seed loads the initial roles, permissions, super-admin account,
// default wallets and categories, and the first appearance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cashflow/internal/cache"
	"cashflow/internal/config"
	"cashflow/internal/database"
	"cashflow/internal/logger"
	"cashflow/internal/router"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the Cash Flow database",
	Long: `seed creates the built-in permissions and roles, a super-admin user,
that user's default wallets and categories, and the initial appearance.

Flags can also be set through CASHFLOW_* environment variables, for example
CASHFLOW_ADMIN_PASSWORD.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("admin-name", "Super Admin", "name of the super-admin user")
	flags.String("admin-email", "admin@cashflow.local", "email of the super-admin user")
	flags.String("admin-password", "", "password of the super-admin user (required, at least 8 characters)")
	flags.String("app-name", "Cash Flow", "initial application name")
	flags.String("migrations", "migrations", "directory of SQL migrations applied before seeding")

	_ = viper.BindPFlag("admin.name", flags.Lookup("admin-name"))
	_ = viper.BindPFlag("admin.email", flags.Lookup("admin-email"))
	_ = viper.BindPFlag("admin.password", flags.Lookup("admin-password"))
	_ = viper.BindPFlag("app.name", flags.Lookup("app-name"))
	_ = viper.BindPFlag("migrations", flags.Lookup("migrations"))

	viper.SetEnvPrefix("CASHFLOW")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	opts := Options{
		AdminName:     viper.GetString("admin.name"),
		AdminEmail:    viper.GetString("admin.email"),
		AdminPassword: viper.GetString("admin.password"),
		AppName:       viper.GetString("app.name"),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.InitWithFile(cfg.Env, logger.FileOptions{Path: cfg.LogFile})
	defer logger.Sync()

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(viper.GetString("migrations")); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	svc := router.NewServices(dbManager.DB(), cache.Nop{}, cfg.StorageDir)
	return Seed(cmd.Context(), svc, opts)
}
