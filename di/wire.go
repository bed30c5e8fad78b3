//go:build wireinject
// +build wireinject

package di

import (
	"justhear/config"
	"justhear/infras/jwt"
	"justhear/infras/kafka"
	"justhear/infras/meeting"
	"justhear/infras/otel"
	"justhear/infras/postgres"
	"justhear/infras/redis"
	"justhear/infras/s3"
	"justhear/permissions"
	"justhear/shared/cache"
	"justhear/transport/http"
	"justhear/transport/http/middleware"
	"justhear/transport/http/router"

	"github.com/google/wire"

	authService "justhear/internal/domains/auth/service"
	listenerRepository "justhear/internal/domains/listener/repository"
	listenerService "justhear/internal/domains/listener/service"
	meetingService "justhear/internal/domains/meeting/service"
	reservationRepository "justhear/internal/domains/reservation/repository"
	reservationService "justhear/internal/domains/reservation/service"
	reviewRepository "justhear/internal/domains/review/repository"
	reviewService "justhear/internal/domains/review/service"
	slotRepository "justhear/internal/domains/slot/repository"
	slotService "justhear/internal/domains/slot/service"
	userRepository "justhear/internal/domains/user/repository"
	userService "justhear/internal/domains/user/service"

	authHandler "justhear/internal/handlers/auth"
	listenerHandler "justhear/internal/handlers/listener"
	reservationHandler "justhear/internal/handlers/reservation"
	reviewHandler "justhear/internal/handlers/review"
	slotHandler "justhear/internal/handlers/slot"
	userHandler "justhear/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	meeting.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var listenerDomain = wire.NewSet(
	listenerRepository.New,
	listenerService.New,
)

var slotDomain = wire.NewSet(
	slotRepository.New,
	slotService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var meetingDomain = wire.NewSet(
	meetingService.New,
)

var reviewDomain = wire.NewSet(
	reviewRepository.New,
	reviewService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	listenerDomain,
	slotDomain,
	reservationDomain,
	meetingDomain,
	reviewDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	listenerHandler.New,
	slotHandler.New,
	reservationHandler.New,
	reviewHandler.New,
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
