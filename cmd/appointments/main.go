package main

import (
	appthandler "fixwell/internal/appointments/handler"
	apptrepo "fixwell/internal/appointments/repository"
	apptservice "fixwell/internal/appointments/service"
	apptvalidator "fixwell/internal/appointments/validator"
	"fixwell/internal/availability/cache"
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
	"fixwell/pkg/sealer"
)

const ServiceName = "appointments"

// @title Fixwell Appointments API
// @version 1.0
// @description Booking, lookup and lifecycle management for appointments.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.CacheBackend == config.CacheBackendRedis {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Appointments service")
	handler, producer, slotCache := initServices(cfg)
	defer slotCache.Stop()
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka producer cleanly", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg, handler)
	serverApp.Run()
}

func initServices(cfg *config.Config) (*appthandler.AppointmentHandler, *kafka.Producer, cache.SlotCache) {
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
	lockRepo := apptrepo.NewMongoAppointmentLockRepository(cfg)

	// The in-process availability service backs the conflict suggestions
	// returned on double bookings and gets its shared slot cache
	// invalidated directly after each commit.
	slotCache := newSlotCache(cfg)
	availabilityService := availservice.NewAvailabilityService(
		ruleService,
		typeService,
		appointmentRepo,
		slotCache,
		cfg,
	)

	producer := newProducer(cfg)
	appointmentService := apptservice.NewAppointmentService(
		appointmentRepo,
		lockRepo,
		apptvalidator.NewAppointmentValidator(cfg.Log),
		ruleService,
		typeService,
		availabilityService,
		availabilityService,
		producer,
		newSealer(cfg),
		cfg,
	)

	cfg.Log.Info("Appointments service initialized", "database", cfg.MongoDatabaseName)
	return appthandler.NewAppointmentHandler(appointmentService, cfg.Log), producer, slotCache
}

func newSlotCache(cfg *config.Config) cache.SlotCache {
	if cfg.CacheBackend == config.CacheBackendRedis {
		return cache.NewRedisSlotCache(cfg.Client.Redis, cfg.Log)
	}
	return cache.NewMemorySlotCache()
}

func newProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, kafka.TopicAppointmentEvents, kafka.TopicAppointmentEventsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}
	return producer
}

func newSealer(cfg *config.Config) *sealer.Sealer {
	if cfg.ConfirmationSealerKey == "" {
		cfg.Log.Warn("Confirmation sealer key not set, confirmation codes disabled")
		return nil
	}
	s, err := sealer.New(cfg.ConfirmationSealerKey)
	if err != nil {
		cfg.Log.Fatal("Invalid confirmation sealer key", "error", err)
	}
	return s
}
