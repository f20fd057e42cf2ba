package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/duebot/internal/profile"
	"github.com/hrygo/duebot/store"
	"github.com/hrygo/duebot/store/db/postgres"
	"github.com/hrygo/duebot/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// The "none" driver has no backend; callers check profile.JournalEnabled first.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
