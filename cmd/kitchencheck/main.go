package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/config"
	"github.com/Joseda-hg/kitchencheck/internal/db"
)

var Version = "dev"

var (
	configPathFlag string
	dbPathFlag     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kitchencheck",
		Short:         "Daily food safety checklist for kitchens",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "sqlite db path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(exportCmd())

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the opened configuration, database and checklist service shared by
// every command.
type app struct {
	cfgPath string
	cfg     config.Config
	loc     *time.Location
	sqlDB   *sql.DB
	store   *db.Store
	service *checklist.Service
}

func openApp() (*app, error) {
	cfgPath, err := resolveConfigPath(configPathFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "kitchencheck.db")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	store := db.NewStore(sqlDB, db.WithLocation(loc))
	service := checklist.NewService(store, store, checklist.WithClock(func() time.Time {
		return time.Now().In(loc)
	}))

	return &app{
		cfgPath: cfgPath,
		cfg:     cfg,
		loc:     loc,
		sqlDB:   sqlDB,
		store:   store,
		service: service,
	}, nil
}

func (a *app) Close() error {
	return a.sqlDB.Close()
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}
