package main

import (
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/config"
	"github.com/overture-digital/marquee/internal/storage"
)

// InitStorage selects the configured media storage backend.
func InitStorage(cfg *config.Config) storage.Storage {
	if cfg.UseSpaces {
		spaces, err := storage.NewSpacesStorage(
			cfg.SpacesEndpoint,
			cfg.SpacesRegion,
			cfg.SpacesBucket,
			cfg.SpacesCDNURL,
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize spaces storage")
		}
		log.Info().Str("cdn", cfg.SpacesCDNURL).Msg("using spaces storage")
		return spaces
	}

	log.Info().Str("dir", cfg.UploadDir).Msg("using local file storage")
	return storage.NewLocalStorage(cfg.UploadDir, "/uploads")
}
