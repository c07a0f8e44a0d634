package appcontext

import (
	"github.com/SeakMengs/AutoSign/internal/auth"
	"github.com/SeakMengs/AutoSign/internal/config"
	"github.com/SeakMengs/AutoSign/internal/metrics"
	"github.com/SeakMengs/AutoSign/internal/repository"
	"github.com/SeakMengs/AutoSign/internal/service"
	"go.uber.org/zap"
)

// Services groups the signing workflow use cases.
type Services struct {
	Document *service.DocumentService
	Layout   *service.LayoutService
	Issuer   *service.IssuerService
	Signing  *service.SigningService
}

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// JWTService verifies the agent access tokens.
	JWTService auth.JWTInterface

	// Metrics may be nil, every collector call is then a no-op.
	Metrics *metrics.Metrics

	Services Services
}
