// Package seeders loads demo data: an admin, a partner restaurant with its
// menu, two riders and a launch voucher. Every seeder is idempotent, so
// `ayoo seed` can run against a database that already has the rows.
//
// Seeders register themselves from init:
//
//	func init() { Register("vouchers", seedVouchers) }
package seeders

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

// SeederFunc inserts one group of rows.
type SeederFunc func(ctx context.Context, db *gorm.DB) error

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password"

type seeder struct {
	name string
	fn   SeederFunc
}

var (
	mu       sync.Mutex
	registry []seeder
)

// Register adds a seeder. Seeders run in registration order.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, seeder{name: name, fn: fn})
}

// Names lists the registered seeders in run order.
func Names() []string {
	var out []string
	for _, s := range snapshot() {
		out = append(out, s.name)
	}
	return out
}

func snapshot() []seeder {
	mu.Lock()
	defer mu.Unlock()
	return slices.Clone(registry)
}

// RunAll runs every seeder.
func RunAll(ctx context.Context, db *gorm.DB) error {
	return Run(ctx, db)
}

// Run runs the named seeders, or all of them when names is empty. Each
// seeder commits in its own transaction; the first failure stops the run.
func Run(ctx context.Context, db *gorm.DB, names ...string) error {
	all := snapshot()
	for _, n := range names {
		if !slices.ContainsFunc(all, func(s seeder) bool { return s.name == n }) {
			return fmt.Errorf("seeder %q is not registered (have %v)", n, Names())
		}
	}

	ran := 0
	for _, s := range all {
		if len(names) > 0 && !slices.Contains(names, s.name) {
			continue
		}
		logger.Info("seeder: running", "name", s.name)
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.fn(ctx, tx)
		})
		if err != nil {
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		ran++
	}
	logger.Info("seeder: done", "count", ran)
	return nil
}
