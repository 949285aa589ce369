package router

import (
	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/internal/container"
	"github.com/oksasatya/mexyapp-accounts/internal/infrastructure/cache"
	"github.com/oksasatya/mexyapp-accounts/internal/infrastructure/search"
	handlers "github.com/oksasatya/mexyapp-accounts/internal/interface/http"
	"github.com/oksasatya/mexyapp-accounts/internal/router/modules"
	"github.com/oksasatya/mexyapp-accounts/pkg/helpers"
)

type UserModuleDeps struct {
	Registration *application.RegistrationService
	Query        *application.QueryService
	Membership   *application.MembershipService
}

// projections assembles the optional collaborators that are configured.
// Interfaces are only set for non-nil clients so nil checks downstream hold.
func projections() application.Projections {
	cfg := container.GetConfig()
	p := application.Projections{Logger: container.GetLogger()}
	if rdb := container.GetRedis(); rdb != nil {
		p.Cache = cache.NewUserViewCache(rdb, cfg.UserCacheTTL, container.GetLogger())
	}
	if es := container.GetES(); es != nil {
		p.Index = search.NewUserIndex(es, cfg.ESUsersIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		p.Events = pub
	}
	return p
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := container.GetUserRepo()
	hasher := helpers.NewBcryptHasher(cfg.BcryptCost)
	proj := projections()

	return UserModuleDeps{
		Registration: application.NewRegistrationService(repo, hasher, proj, logger),
		Query:        application.NewQueryService(repo, proj.Cache, proj.Index),
		Membership:   application.NewMembershipService(repo, hasher, proj, logger),
	}
}

// InitModules wires every module from the container into the registry.
// Call it once at startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	deps := buildUserDeps()

	r.Add(modules.NewUserModule(handlers.NewUserHandler(deps.Registration, deps.Query, logger), container.GetRedis(), cfg.RegisterRateLimit))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(deps.Query, logger)))
	if cfg.AdminRoutesEnabled {
		r.Add(modules.NewAdminModule(handlers.NewAdminHandler(deps.Membership, logger)))
	}
	if cfg.MetricsEnabled {
		r.AddRoot(modules.NewMetricsModule())
	}
}
