package di

import (
	"gorm.io/gorm"

	"registration_backend/internal/feature/registration/adapters"
	"registration_backend/internal/feature/registration/transport/handler"
	"registration_backend/internal/feature/registration/usecase"
	"registration_backend/internal/platform/clock"
	"registration_backend/internal/platform/codegen"
	"registration_backend/internal/platform/config"
	jwtmw "registration_backend/internal/platform/jwt"
	"registration_backend/internal/platform/security"
)

// Registration is what the HTTP layer needs from the registration use case.
type Registration interface {
	handler.RegistrationUsecase
	handler.Authenticator
}

// NewRegistration wires the registration use case to its gorm adapters.
// metrics may be nil.
func NewRegistration(cfg *config.Config, db *gorm.DB, notifier usecase.Notifier, metrics usecase.Metrics) (Registration, error) {
	gen, err := codegen.NewNumeric(cfg.Registration.CodeLength)
	if err != nil {
		return nil, err
	}

	deps := usecase.Dependencies{
		Users:      adapters.NewUserGorm(db),
		UnitOfWork: adapters.NewGormUnitOfWork(db, cfg.Database.TxTimeout),
		Notifier:   notifier,
		Generator:  gen,
		Hasher:     security.NewBcryptHasher(cfg.Registration.BcryptCost, security.DefaultPasswordPolicy()),
		Clock:      clock.System{},
		Tokens:     jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration),
		Metrics:    metrics,
	}

	return usecase.NewRegistrationUsecase(deps, usecase.Config{
		CodeTTL:    cfg.Registration.CodeTTL,
		CodeLength: cfg.Registration.CodeLength,
	}), nil
}
