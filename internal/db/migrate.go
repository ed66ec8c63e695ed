package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// migrationExecer is the slice of pgx.Tx the migration runner needs.
type migrationExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunMigrations runs SQL migrations from the migrations directory inside a
// single transaction, so a failing migration leaves no partial schema.
func RunMigrations(ctx context.Context, conn *Connection, migrationsPath string) error {
	return conn.WithTx(ctx, func(tx pgx.Tx) error {
		return applyMigrations(ctx, tx, migrationsPath)
	})
}

func applyMigrations(ctx context.Context, db migrationExecer, migrationsPath string) error {
	files, err := os.ReadDir(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Migration files start with an ordinal prefix (001_, 002_, ...).
	var migrationFiles []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".up.sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}
	sort.Strings(migrationFiles)

	for _, fileName := range migrationFiles {
		filePath := filepath.Join(migrationsPath, fileName)
		sql, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", fileName, err)
		}

		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", fileName, err)
		}

		log.Printf("[MIGRATE] executed migration: %s", fileName)
	}

	return nil
}
