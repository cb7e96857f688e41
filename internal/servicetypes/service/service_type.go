package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	typeserrors "fixwell/internal/servicetypes/errors"
	"fixwell/internal/servicetypes/repository"
	"fixwell/internal/servicetypes/validator"
	"fixwell/pkg/clock"
	"fixwell/pkg/config"
	apperrors "fixwell/pkg/errors"
	"fixwell/pkg/model"
	"fixwell/pkg/sanitizer"
)

type ServiceTypeService interface {
	Create(ctx context.Context, st *model.ServiceType) error
	GetByID(ctx context.Context, id string) (*model.ServiceType, error)
	GetActive(ctx context.Context, id string) (*model.ServiceType, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.ServiceType, int64, error)
	Update(ctx context.Context, id string, patch *model.ServiceTypePatch) error
	Delete(ctx context.Context, id string) error
	ValidateBookingDate(st *model.ServiceType, date string, startTime string) error
}

type serviceTypeService struct {
	repo      repository.ServiceTypeRepository
	validator *validator.ServiceTypeValidator
	cfg       *config.Config
	clock     clock.Clock
}

func NewServiceTypeService(
	repo repository.ServiceTypeRepository,
	validator *validator.ServiceTypeValidator,
	cfg *config.Config,
) ServiceTypeService {
	return &serviceTypeService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		clock:     clock.System(),
	}
}

func (s *serviceTypeService) Create(ctx context.Context, st *model.ServiceType) error {
	s.sanitize(st)
	s.applyDefaults(st)

	if err := s.validator.Validate(st); err != nil {
		s.cfg.Log.Warn("Service type validation failed", "name", st.Name, "error", err)
		return apperrors.Validation("Service type validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByName(sessCtx, st.Name)
		if err != nil && !errors.Is(err, typeserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check for existing service types", err)
		}
		if existing != nil {
			return apperrors.Conflict("Service type with the same name already exists")
		}
		return s.repo.Create(sessCtx, st)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to create service type", "name", st.Name, "error", err)
		return apperrors.Internal("Failed to create service type", err)
	}

	s.cfg.Log.Info("Service type created", "id", st.ID, "name", st.Name)
	return nil
}

func (s *serviceTypeService) GetByID(ctx context.Context, id string) (*model.ServiceType, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service type ID cannot be empty")
	}

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, typeserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service type", id)
		}
		if errors.Is(err, typeserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service type ID format")
		}
		s.cfg.Log.Error("Failed to get service type", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service type", err)
	}

	return st, nil
}

// GetActive resolves a service type for booking admission. Missing,
// malformed, and inactive types all surface as INVALID_SERVICE_TYPE so
// callers cannot distinguish retired offerings from unknown ones.
func (s *serviceTypeService) GetActive(ctx context.Context, id string) (*model.ServiceType, error) {
	if id == "" {
		return nil, apperrors.InvalidServiceType(id)
	}

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, typeserrors.ErrNotFound) || errors.Is(err, typeserrors.ErrInvalidID) {
			return nil, apperrors.InvalidServiceType(id)
		}
		s.cfg.Log.Error("Failed to resolve service type", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to resolve service type", err)
	}

	if !st.IsActive {
		return nil, apperrors.InvalidServiceType(id)
	}

	return st, nil
}

func (s *serviceTypeService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.ServiceType, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var types []*model.ServiceType
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count service types", "error", err)
			errCount = apperrors.Internal("Failed to count service types", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		types, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list service types", "error", err)
			errFind = apperrors.Internal("Failed to retrieve service types", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return types, count, nil
}

func (s *serviceTypeService) Update(ctx context.Context, id string, patch *model.ServiceTypePatch) error {
	if id == "" {
		return apperrors.InvalidInput("Service type ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, typeserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service type", id)
		}
		if errors.Is(err, typeserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service type ID format")
		}
		return apperrors.Internal("Failed to check service type existence", err)
	}

	merged := s.mergePatch(existing, patch)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Service type validation failed", "id", id, "error", err)
		return apperrors.Validation("Service type validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		other, err := s.repo.FindByName(sessCtx, merged.Name)
		if err != nil && !errors.Is(err, typeserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check for duplicate service types", err)
		}
		if other != nil && other.ID != id {
			return apperrors.Conflict("Another service type with the same name already exists")
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			s.cfg.Log.Error("Failed to update service type", "id", id, "error", err)
			return apperrors.Internal("Failed to update service type", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Service type updated", "id", id, "name", merged.Name)
	return nil
}

func (s *serviceTypeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Service type ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, typeserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service type", id)
		}
		if errors.Is(err, typeserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service type ID format")
		}
		s.cfg.Log.Error("Failed to delete service type", "id", id, "error", err)
		return apperrors.Internal("Failed to delete service type", err)
	}

	s.cfg.Log.Info("Service type deleted", "id", id)
	return nil
}

func (s *serviceTypeService) sanitize(st *model.ServiceType) {
	st.Name = sanitizer.NormalizeName(st.Name)
	st.DurationMinutes = sanitizer.ClampDurationMinutes(st.DurationMinutes)
}

func (s *serviceTypeService) applyDefaults(st *model.ServiceType) {
	if st.DurationMinutes == 0 {
		st.DurationMinutes = s.cfg.DefaultSlotDurationMin
	}
	if st.MaxBookingsPerDay == 0 {
		st.MaxBookingsPerDay = s.cfg.DefaultMaxBookingsPerDay
	}
}

func (s *serviceTypeService) mergePatch(existing *model.ServiceType, patch *model.ServiceTypePatch) *model.ServiceType {
	merged := *existing

	if patch.Name != nil {
		merged.Name = sanitizer.NormalizeName(*patch.Name)
	}
	if patch.DurationMinutes != nil {
		merged.DurationMinutes = *patch.DurationMinutes
	}
	if patch.BufferMinutes != nil {
		merged.BufferMinutes = *patch.BufferMinutes
	}
	if patch.AllowedDays != nil {
		merged.AllowedDays = patch.AllowedDays
	}
	if patch.IsExclusive != nil {
		merged.IsExclusive = *patch.IsExclusive
	}
	if patch.ExclusiveDays != nil {
		merged.ExclusiveDays = patch.ExclusiveDays
	}
	if patch.MaxBookingsPerDay != nil {
		merged.MaxBookingsPerDay = *patch.MaxBookingsPerDay
	}
	if patch.MinAdvanceHours != nil {
		merged.MinAdvanceHours = *patch.MinAdvanceHours
	}
	if patch.MaxAdvanceDays != nil {
		merged.MaxAdvanceDays = *patch.MaxAdvanceDays
	}
	if patch.RequiresApproval != nil {
		merged.RequiresApproval = *patch.RequiresApproval
	}
	if patch.IsActive != nil {
		merged.IsActive = *patch.IsActive
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.Name = strings.TrimSpace(merged.Name)
	return &merged
}
