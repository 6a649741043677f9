package db

import (
	"github.com/pkg/errors"

	"github.com/musubi-chat/musubi/internal/profile"
	"github.com/musubi-chat/musubi/store"
	"github.com/musubi-chat/musubi/store/db/memory"
	"github.com/musubi-chat/musubi/store/db/sqlite"
)

// NewDriver creates the KV driver selected by the profile.
//
// sqlite: durable single-file storage, the default for regular installations.
// memory: ephemeral storage for tests and throwaway sessions.
func NewDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile.DSN)
	case "memory":
		driver = memory.NewDB()
	default:
		return nil, errors.Errorf("unknown store driver %q: only 'sqlite' and 'memory' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create store driver")
	}
	return driver, nil
}
