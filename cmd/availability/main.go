package main

import (
	"context"

	apptrepo "fixwell/internal/appointments/repository"
	"fixwell/internal/availability/cache"
	availconsumer "fixwell/internal/availability/consumer"
	availhandler "fixwell/internal/availability/handler"
	availservice "fixwell/internal/availability/service"
	rulerepo "fixwell/internal/rules/repository"
	ruleservice "fixwell/internal/rules/service"
	rulevalidator "fixwell/internal/rules/validator"
	typerepo "fixwell/internal/servicetypes/repository"
	typeservice "fixwell/internal/servicetypes/service"
	typevalidator "fixwell/internal/servicetypes/validator"
	"fixwell/pkg/app"
	"fixwell/pkg/config"
	"fixwell/pkg/kafka"
	kafka_config "fixwell/pkg/kafka/config"
	kafka_middleware "fixwell/pkg/kafka/middleware"
)

const (
	ServiceName     = "availability"
	ConsumerGroupID = "availability-cache-invalidator"
)

// @title Fixwell Availability API
// @version 1.0
// @description Bookable slot listings and next-available lookups.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.CacheBackend == config.CacheBackendRedis {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Availability service")
	availabilityService, slotCache := initServices(cfg)
	defer slotCache.Stop()

	consumer := startInvalidationConsumer(cfg, availabilityService)
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka consumer cleanly", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg, availhandler.NewAvailabilityHandler(availabilityService, cfg))
	serverApp.Run()
}

func initServices(cfg *config.Config) (availservice.AvailabilityService, cache.SlotCache) {
	ruleService := ruleservice.NewRuleService(
		rulerepo.NewMongoRuleRepository(cfg),
		rulevalidator.NewRuleValidator(cfg.Log),
		cfg,
	)
	typeService := typeservice.NewServiceTypeService(
		typerepo.NewMongoServiceTypeRepository(cfg),
		typevalidator.NewServiceTypeValidator(cfg.Log),
		cfg,
	)
	appointmentRepo := apptrepo.NewMongoAppointmentRepository(cfg)

	var slotCache cache.SlotCache
	if cfg.CacheBackend == config.CacheBackendRedis {
		slotCache = cache.NewRedisSlotCache(cfg.Client.Redis, cfg.Log)
	} else {
		slotCache = cache.NewMemorySlotCache()
	}

	availabilityService := availservice.NewAvailabilityService(
		ruleService,
		typeService,
		appointmentRepo,
		slotCache,
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName, "cache_backend", cfg.CacheBackend)
	return availabilityService, slotCache
}

// startInvalidationConsumer subscribes to appointment lifecycle events and
// drops cached listings for the affected dates.
func startInvalidationConsumer(cfg *config.Config, invalidator availconsumer.CacheInvalidator) *kafka.Consumer {
	kafkaCfg := kafka_config.Load()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafka.TopicAppointmentEvents,
		ConsumerGroupID,
		kafka.TopicAppointmentEventsDLQ,
		availconsumer.NewInvalidationHandler(invalidator, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			cfg.Log.Error("Kafka consumer stopped", "error", err)
		}
	}()
	return consumer
}
