package note

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/outliner/internal/config"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// NewRepository returns the repository selected by cfg.Driver. db is only used by the mysql
// driver and may be nil otherwise.
func NewRepository(cfg config.StoreConfig, db *sqlx.DB, engine *outline.Engine) (Repository, error) {
	switch cfg.Driver {
	case config.StoreDriverMySQL:
		if db == nil {
			return nil, fmt.Errorf("store driver %s needs a database connection", cfg.Driver)
		}
		return NewDBRepository(db, engine), nil
	case config.StoreDriverLocal, "":
		return NewLocalRepository(cfg.LocalDirectory, engine), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
