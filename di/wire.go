//go:build wireinject
// +build wireinject

package di

import (
	"stayhub/config"
	"stayhub/infras/jwt"
	"stayhub/infras/kafka"
	"stayhub/infras/otel"
	"stayhub/infras/postgres"
	"stayhub/infras/redis"
	bookingHandler "stayhub/internal/handlers/booking"
	"stayhub/shared/cache"
	"stayhub/shared/clock"
	"stayhub/shared/docstore"
	"stayhub/transport/http"
	"stayhub/transport/http/middleware"
	"stayhub/transport/http/router"

	bookingRepository "stayhub/internal/domains/booking/repository"
	bookingService "stayhub/internal/domains/booking/service"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	clock.New,
	docstore.NewPostgresStore,
	wire.Bind(new(docstore.Store), new(*docstore.PostgresStore)),
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var domains = wire.NewSet(
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
