package application

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// MigrationManager applies schema files embedded by modules. Each file
// is tracked by name and content hash in the migrations table, so a
// changed file is rejected rather than silently re-run.
type MigrationManager interface {
	RegisterSchema(fsys *embed.FS)
	Apply(ctx context.Context) error
}

func NewMigrationManager(pool *pgxpool.Pool, log *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, log: log}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	log     *logrus.Logger
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS) {
	m.schemas = append(m.schemas, fsys)
}

type schemaFile struct {
	name    string
	content []byte
}

func (m *migrationManager) Apply(ctx context.Context) error {
	if _, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			hash       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	files, err := m.collect()
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := m.applyOne(ctx, file); err != nil {
			return errors.Wrapf(err, "migration %s", file.name)
		}
	}
	return nil
}

func (m *migrationManager) collect() ([]schemaFile, error) {
	var files []schemaFile
	for _, fsys := range m.schemas {
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".sql") {
				return nil
			}
			content, err := fsys.ReadFile(path)
			if err != nil {
				return err
			}
			files = append(files, schemaFile{name: path, content: content})
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "walk schema fs")
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

func (m *migrationManager) applyOne(ctx context.Context, file schemaFile) error {
	sum := sha256.Sum256(file.content)
	hash := hex.EncodeToString(sum[:])

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var existing string
	err = tx.QueryRow(ctx, `SELECT hash FROM schema_migrations WHERE name = $1 FOR UPDATE`, file.name).Scan(&existing)
	switch {
	case err == nil:
		if existing != hash {
			return errors.Errorf("already applied with different content (hash %s)", existing)
		}
		return tx.Commit(ctx)
	case !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if _, err := tx.Exec(ctx, string(file.content)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name, hash) VALUES ($1, $2)`, file.name, hash); err != nil {
		return err
	}
	if m.log != nil {
		m.log.WithField("migration", file.name).Info("applied schema migration")
	}
	return tx.Commit(ctx)
}
