package di

import (
	"path/filepath"

	"github.com/emldov7/evMonde--sub000/internal/handler"
	"github.com/emldov7/evMonde--sub000/internal/mailer"
	"github.com/emldov7/evMonde--sub000/internal/payments"
	"github.com/emldov7/evMonde--sub000/internal/qrticket"
	"github.com/emldov7/evMonde--sub000/internal/repository"
	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/internal/worker"
	"github.com/emldov7/evMonde--sub000/pkg/config"
	"github.com/emldov7/evMonde--sub000/pkg/crypto"
	"github.com/emldov7/evMonde--sub000/pkg/database"
	"github.com/emldov7/evMonde--sub000/pkg/redis"
)

// DefaultCurrency is applied to events created without one
const DefaultCurrency = "XOF"

// Container holds all dependencies for the API server
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	UserRepo         repository.UserRepository
	EventRepo        repository.EventRepository
	TicketRepo       repository.TicketRepository
	RegistrationRepo repository.RegistrationRepository
	ReminderRepo     repository.ReminderRepository
	TaxonomyRepo     repository.TaxonomyRepository
	PayoutRepo       repository.PayoutRepository
	StatsRepo        repository.StatsRepository

	// Services
	AuthService         service.AuthService
	EventService        service.EventService
	RegistrationService service.RegistrationService
	VerificationService service.VerificationService
	MarketplaceService  service.MarketplaceService
	SuperadminService   service.SuperadminService
	UploadService       service.UploadService

	// Workers
	ReminderWorker *worker.ReminderWorker

	// Handlers
	AuthHandler         *handler.AuthHandler
	EventHandler        *handler.EventHandler
	RegistrationHandler *handler.RegistrationHandler
	MarketplaceHandler  *handler.MarketplaceHandler
	SuperadminHandler   *handler.SuperadminHandler
	UploadHandler       *handler.UploadHandler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, db *database.PostgresDB, cache *redis.Client) (*Container, error) {
	c := &Container{
		DB:    db,
		Redis: cache,
	}

	pool := db.Pool()
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.TicketRepo = repository.NewPostgresTicketRepository(pool)
	c.RegistrationRepo = repository.NewPostgresRegistrationRepository(pool)
	c.ReminderRepo = repository.NewPostgresReminderRepository(pool)
	c.TaxonomyRepo = repository.NewPostgresTaxonomyRepository(pool)
	c.PayoutRepo = repository.NewPostgresPayoutRepository(pool)
	c.StatsRepo = repository.NewPostgresStatsRepository(pool)

	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey)
	minter := qrticket.NewMinter(filepath.Join(cfg.Upload.Dir, "qr"), cfg.App.PublicBaseURL, 0)
	mail := mailer.New(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, cfg.Mail.Enabled)
	box := crypto.NewBox(cfg.JWT.Secret)

	c.AuthService = service.NewAuthService(c.UserRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	c.EventService = service.NewEventService(c.EventRepo, c.TicketRepo, c.ReminderRepo, c.TaxonomyRepo)
	c.RegistrationService = service.NewRegistrationService(
		c.EventRepo,
		c.TicketRepo,
		c.RegistrationRepo,
		c.UserRepo,
		c.PayoutRepo,
		c.TaxonomyRepo,
		gateway,
		minter,
		mail,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
	)
	c.VerificationService = service.NewVerificationService(c.RegistrationRepo, c.EventRepo, c.UserRepo)
	c.MarketplaceService = service.NewMarketplaceService(
		c.EventRepo,
		c.TicketRepo,
		c.TaxonomyRepo,
		c.PayoutRepo,
		box,
		DefaultCurrency,
	)
	c.SuperadminService = service.NewSuperadminService(c.UserRepo, c.EventRepo, c.StatsRepo, cache)

	uploads, err := service.NewUploadService(cfg.Upload.Dir, cfg.App.PublicBaseURL, cfg.Upload.MaxSizeBytes)
	if err != nil {
		return nil, err
	}
	c.UploadService = uploads

	c.ReminderWorker = worker.NewReminderWorker(
		c.ReminderRepo,
		c.EventRepo,
		c.RegistrationRepo,
		c.UserRepo,
		mail,
		nil,
	)

	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.RegistrationHandler = handler.NewRegistrationHandler(c.RegistrationService, c.VerificationService)
	c.MarketplaceHandler = handler.NewMarketplaceHandler(c.MarketplaceService)
	c.SuperadminHandler = handler.NewSuperadminHandler(c.SuperadminService)
	c.UploadHandler = handler.NewUploadHandler(c.UploadService)

	return c, nil
}
