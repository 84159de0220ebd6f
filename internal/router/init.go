package router

import (
	"github.com/venuepass/venuepass/internal/application"
	"github.com/venuepass/venuepass/internal/container"
	pginfra "github.com/venuepass/venuepass/internal/infrastructure/postgres"
	handlers "github.com/venuepass/venuepass/internal/interface/http"
	"github.com/venuepass/venuepass/internal/router/modules"
)

type Deps struct {
	Users  *application.UserService
	Events *application.EventService
	Ledger *application.LocationService
	Engine *application.RegistrationService
	Verify *application.VerificationService
	Admin  *application.AdminService
	Hosts  *application.HostService
	Auth   *handlers.AuthHandler
	Event  *handlers.EventHandler
	Loc    *handlers.LocationHandler
	Host   *handlers.HostHandler
}

func buildDeps() Deps {
	pool := container.GetPGPool()
	logger := container.GetLogger()
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(pool)
	venueRepo := pginfra.NewVenueRepository(pool)
	eventRepo := pginfra.NewEventRepository(pool)
	regRepo := pginfra.NewRegistrationRepository(pool)
	locRepo := pginfra.NewLocationRepository(pool)
	hostRepo := pginfra.NewHostRepository(pool)

	users := application.NewUserService(userRepo, container.GetJWT(), container.GetRedis(), container.GetGCS(), cfg.GCSBucket, logger)
	events := application.NewEventService(eventRepo, venueRepo, container.GetES(), cfg.ESEventIndex, logger)
	ledger := application.NewLocationService(locRepo, venueRepo, logger)
	engine := application.NewRegistrationService(eventRepo, regRepo, ledger, logger)
	verify := application.NewVerificationService(ledger, venueRepo, eventRepo, logger)
	admin := application.NewAdminService(eventRepo, regRepo, userRepo, engine, container.GetRabbitPub(), logger)
	hosts := application.NewHostService(hostRepo, userRepo, venueRepo, logger)

	return Deps{
		Users:  users,
		Events: events,
		Ledger: ledger,
		Engine: engine,
		Verify: verify,
		Admin:  admin,
		Hosts:  hosts,
		Auth:   handlers.NewAuthHandler(users, logger, cfg.CookieDomain, cfg.CookieSecure),
		Event:  handlers.NewEventHandler(events, engine, admin, logger),
		Loc:    handlers.NewLocationHandler(ledger, verify, events, logger),
		Host:   handlers.NewHostHandler(hosts, logger),
	}
}

// InitModules wires repositories, services and handlers, then registers every
// feature module with the registry. Call once during startup.
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()

	r.Add(modules.NewAuthModule(deps.Auth, jwt))
	r.Add(modules.NewEventModule(deps.Event, jwt))
	r.Add(modules.NewLocationModule(deps.Loc, jwt))
	r.Add(modules.NewHostModule(deps.Host, jwt))
}
