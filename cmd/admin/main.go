package main

import (
	"github.com/julienschmidt/httprouter"

	rulehandler "fixwell/internal/rules/handler"
	rulerepo "fixwell/internal/rules/repository"
	ruleservice "fixwell/internal/rules/service"
	rulevalidator "fixwell/internal/rules/validator"
	typehandler "fixwell/internal/servicetypes/handler"
	typerepo "fixwell/internal/servicetypes/repository"
	typeservice "fixwell/internal/servicetypes/service"
	typevalidator "fixwell/internal/servicetypes/validator"
	"fixwell/pkg/app"
	"fixwell/pkg/config"
)

const ServiceName = "admin"

// adminHandler mounts the catalog surfaces (availability rules and
// service types) on a single router.
type adminHandler struct {
	rules        *rulehandler.RuleHandler
	serviceTypes *typehandler.ServiceTypeHandler
}

func (h *adminHandler) RegisterRoutes(router *httprouter.Router) {
	h.rules.RegisterRoutes(router)
	h.serviceTypes.RegisterRoutes(router)
}

// @title Fixwell Admin API
// @version 1.0
// @description Availability rules and service type management.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Admin service")
	serverApp := app.NewApplication(cfg, initServices(cfg))
	serverApp.Run()
}

func initServices(cfg *config.Config) *adminHandler {
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

	cfg.Log.Info("Admin service initialized", "database", cfg.MongoDatabaseName)
	return &adminHandler{
		rules:        rulehandler.NewRuleHandler(ruleService, cfg.Log),
		serviceTypes: typehandler.NewServiceTypeHandler(typeService, cfg.Log),
	}
}
