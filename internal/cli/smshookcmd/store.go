package smshookcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cuihairu/smshook/internal/db"
	messagesgorm "github.com/cuihairu/smshook/internal/infra/persistence/gorm/messages"
)

// dbFlag binds --db to SMSHOOK_DB and DATABASE_URL, flag first.
func dbFlag(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetDefault("db", db.DefaultDSN)
	cmd.Flags().String("db", db.DefaultDSN, "database DSN (sqlite:///path, postgres://..., mysql://...)")
	_ = v.BindEnv("db", "SMSHOOK_DB", "DATABASE_URL")
	_ = v.BindPFlag("db", cmd.Flags().Lookup("db"))
	return v
}

func openRepo(dsn string) (*messagesgorm.Repo, func(), error) {
	gdb, err := db.Open(dsn, db.PoolOptions{})
	if err != nil {
		return nil, nil, err
	}
	if err := messagesgorm.AutoMigrate(gdb); err != nil {
		_ = db.Close(gdb)
		return nil, nil, fmt.Errorf("create messages table: %w", err)
	}
	return messagesgorm.NewRepo(gdb), func() { _ = db.Close(gdb) }, nil
}
