package services

import (
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
)

// inTx runs fn inside a transaction. When dbc already carries one, fn runs in
// a nested savepoint of it.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	base := dbc.Tx
	if base == nil {
		base = db
	}
	ctx := ctxutil.Default(dbc.Ctx)
	return base.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
