package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"dashkeeper/internal/observability"

	"gorm.io/gorm"
)

// SchemaMigration is the bookkeeping row for one applied SQL migration.
// Checksum is the SHA-256 of the up script at the time it ran.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrator applies and reverts a fixed set of migrations against one database.
type Migrator struct {
	db  *gorm.DB
	set []Migration
}

// NewMigrator binds set, ordered by version, to db.
func NewMigrator(db *gorm.DB, set []Migration) *Migrator {
	return &Migrator{db: db, set: set}
}

func checksum(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) records(ctx context.Context) ([]SchemaMigration, error) {
	if !m.db.Migrator().HasTable(&SchemaMigration{}) {
		return nil, nil
	}
	var rows []SchemaMigration
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return rows, nil
}

// Applied returns the recorded versions in ascending order. A database that
// never ran a migration has none.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	rows, err := m.records(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]int, 0, len(rows))
	for _, r := range rows {
		versions = append(versions, r.Version)
	}
	return versions, nil
}

// Pending returns the migrations of the set that are not recorded yet.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, mig := range m.set {
		if !slices.Contains(applied, mig.Version) {
			out = append(out, mig)
		}
	}
	return out, nil
}

// verify rejects recorded versions the binary does not know about and
// scripts edited after they ran.
func (m *Migrator) verify(rows []SchemaMigration) error {
	var problems []string
	for _, r := range rows {
		idx := slices.IndexFunc(m.set, func(mig Migration) bool { return mig.Version == r.Version })
		switch {
		case idx < 0:
			problems = append(problems, fmt.Sprintf("%06d unknown", r.Version))
		case m.set[idx].checksum() != r.Checksum:
			problems = append(problems, fmt.Sprintf("%06d_%s modified after apply", r.Version, r.Name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("schema_migrations out of sync: %s", strings.Join(problems, ", "))
	}
	return nil
}

// Up applies every pending migration, each in its own transaction, and
// returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	rows, err := m.records(ctx)
	if err != nil {
		return 0, err
	}
	if err := m.verify(rows); err != nil {
		return 0, err
	}

	ran := 0
	for _, mig := range m.set {
		if slices.ContainsFunc(rows, func(r SchemaMigration) bool { return r.Version == mig.Version }) {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("apply %s: %w", mig.String(), err)
			}
			return tx.Create(&SchemaMigration{Version: mig.Version, Name: mig.Name, Checksum: mig.checksum()}).Error
		})
		if err != nil {
			return ran, err
		}
		observability.Logger.InfoContext(ctx, "migration applied", slog.String("migration", mig.String()))
		ran++
	}
	return ran, nil
}

// Down reverts one applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	idx := slices.IndexFunc(m.set, func(mig Migration) bool { return mig.Version == version })
	if idx < 0 {
		return fmt.Errorf("migration version %d not found", version)
	}
	mig := m.set[idx]

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %s has not been applied", mig.String())
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", mig.String(), err)
		}
		return tx.Delete(&SchemaMigration{}, "version = ?", version).Error
	})
	if err != nil {
		return err
	}
	observability.Logger.InfoContext(ctx, "migration reverted", slog.String("migration", mig.String()))
	return nil
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	_, err := NewMigrator(db, migrations).Up(ctx)
	return err
}

// RollbackMigration reverts one embedded migration by version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db, migrations).Down(ctx, version)
}
