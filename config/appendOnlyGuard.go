package config

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/scm_backend/appctx"
	"gorm.io/gorm"
)

var ErrAppendOnlyTable = errors.New("table is append-only")

// AppendOnlyGuardPlugin rejects gorm UPDATE and DELETE statements on the order and
// delivery tables. Registered orders are never amended in place.
//
// NOTE:
//   - This does NOT apply to Raw/Exec SQL.
//   - Maintenance jobs bypass it explicitly via appctx.ContextKeySkipAppendOnlyGuard.
type AppendOnlyGuardPlugin struct {
	tables map[string]struct{}
}

func NewAppendOnlyGuardPlugin(tables ...string) *AppendOnlyGuardPlugin {
	p := &AppendOnlyGuardPlugin{tables: make(map[string]struct{}, len(tables))}
	for _, t := range tables {
		p.tables[t] = struct{}{}
	}
	return p
}

func (p *AppendOnlyGuardPlugin) Name() string { return "append_only_guard" }

func (p *AppendOnlyGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Update().Before("gorm:update").Register("append_only_guard:update", p.guard("update")); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("append_only_guard:delete", p.guard("delete"))
}

func (p *AppendOnlyGuardPlugin) guard(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db == nil || db.Statement == nil {
			return
		}
		if _, ok := p.tables[db.Statement.Table]; !ok {
			return
		}
		if shouldBypassAppendOnlyGuard(db.Statement.Context) {
			return
		}
		_ = db.AddError(fmt.Errorf("%w: %s on %s", ErrAppendOnlyTable, op, db.Statement.Table))
	}
}

func shouldBypassAppendOnlyGuard(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, ok := ctx.Value(appctx.ContextKeySkipAppendOnlyGuard).(bool)
	return ok && v
}
