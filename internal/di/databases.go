package di

import (
	"fmt"

	"github.com/aristath/frontier/internal/clientdata"
	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the cache database and applies its schema.
// Nothing is opened when the cache is disabled.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if !cfg.Cache.Enabled {
		log.Info().Msg("Price cache disabled, no database opened")
		return container, nil
	}

	cacheDB, err := database.New(database.Config{
		Path:    cfg.CachePath(),
		Driver:  cfg.Cache.Driver,
		Profile: database.ProfileCache, // Maximum speed for ephemeral data
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	if err := cacheDB.Migrate(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", cacheDB.Name(), err)
	}

	container.CacheDB = cacheDB
	container.ClientDataRepo = clientdata.NewRepository(cacheDB.Conn())

	log.Info().
		Str("path", cacheDB.Path()).
		Str("driver", cacheDB.Driver()).
		Msg("Cache database initialized and schema applied")

	return container, nil
}
