// Package migration runs versioned schema changes and records them in the
// heartscript_migrations table.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
//	}
package migration

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"gorm.io/gorm"
)

// Migration is one reversible schema step.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "heartscript_migrations" }

type entry struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry []entry
)

// Register adds a migration. Names are timestamp-prefixed and run sorted.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, entry{name: name, m: m})
}

func registered() []entry {
	mu.Lock()
	defer mu.Unlock()

	out := make([]entry, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Runner executes and tracks migrations.
type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New creates a Runner that prints progress to stdout.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db, out: os.Stdout}
}

// WithOutput redirects progress lines; pass io.Discard to silence them.
func (r *Runner) WithOutput(w io.Writer) *Runner {
	r.out = w
	return r
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) applied() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load applied: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

func (r *Runner) lastBatch() (int, error) {
	var batch struct{ Max int }
	if err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&batch).Error; err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return batch.Max, nil
}

// Run applies every pending migration as one new batch.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	done, err := r.applied()
	if err != nil {
		return err
	}

	var pending []entry
	for _, e := range registered() {
		if _, ok := done[e.name]; !ok {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	last, err := r.lastBatch()
	if err != nil {
		return err
	}
	batch := last + 1

	for _, e := range pending {
		if err := e.m.Up(r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		if err := r.db.Create(&record{Name: e.name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", e.name, err)
		}
		fmt.Fprintf(r.out, "  Migrated: %s\n", e.name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses the most recent batch, newest first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	last, err := r.lastBatch()
	if err != nil {
		return err
	}
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", last).Order("id desc").Find(&rows).Error; err != nil {
		return fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	known := make(map[string]Migration)
	for _, e := range registered() {
		known[e.name] = e.m
	}

	for _, row := range rows {
		m, ok := known[row.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		if err := r.db.Delete(&row).Error; err != nil {
			return fmt.Errorf("migration: forget %s: %w", row.Name, err)
		}
		fmt.Fprintf(r.out, "  Rolled back: %s\n", row.Name)
	}
	return nil
}

// Status prints every registered migration with its batch or "Pending".
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	done, err := r.applied()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	for _, e := range registered() {
		if row, ok := done[e.name]; ok {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", e.name, "Ran", row.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", e.name, "Pending")
		}
	}
	return nil
}
