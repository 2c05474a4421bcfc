package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/cpne/stages/internal/app/models"
	appRepos "github.com/cpne/stages/internal/app/repositories"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

// DefaultLevels are the three school years every section goes through
var DefaultLevels = []string{"1", "2", "3"}

// DefaultSections are the tracks of the school, the MP ones feeding the attribution screen
var DefaultSections = []string{"ASA", "ASE", "ASSC", "EDE", "EDS", "MP_ASE", "MP_ASSC"}

// DefaultDomains tag the availabilities offered by corporations
var DefaultDomains = []string{"Petite enfance", "Handicap", "Personnes âgées", "Santé"}

// CreateDefaultData creates the default levels, sections and domains that do not exist
// yet. Errors are collected so one failure does not prevent the other rows.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	levelRepo := appRepos.NewLevelRepository(dbPool)
	sectionRepo := appRepos.NewSectionRepository(dbPool)
	domainRepo := appRepos.NewDomainRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (Levels/Sections/Domains)...")
	var finalErr error

	// --- Levels --- //
	for _, name := range DefaultLevels {
		_, err := levelRepo.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			lgr.Error().Err(err).Str("level", name).Msg("Error looking up level")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := levelRepo.Create(ctx, &appModels.Level{Name: name}); err != nil {
			lgr.Error().Err(err).Str("level", name).Msg("Error creating level")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("level", name).Msg("Level created")
	}

	// --- Sections --- //
	for _, name := range DefaultSections {
		_, err := sectionRepo.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			lgr.Error().Err(err).Str("section", name).Msg("Error looking up section")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := sectionRepo.Create(ctx, &appModels.Section{Name: name}); err != nil {
			lgr.Error().Err(err).Str("section", name).Msg("Error creating section")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("section", name).Msg("Section created")
	}

	// --- Domains --- //
	for _, name := range DefaultDomains {
		_, err := domainRepo.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			lgr.Error().Err(err).Str("domain", name).Msg("Error looking up domain")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := domainRepo.Create(ctx, &appModels.Domain{Name: name}); err != nil {
			lgr.Error().Err(err).Str("domain", name).Msg("Error creating domain")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("domain", name).Msg("Domain created")
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data checked")
	}
	return finalErr
}
