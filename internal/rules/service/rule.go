package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	ruleerrors "fixwell/internal/rules/errors"
	"fixwell/internal/rules/repository"
	"fixwell/internal/rules/validator"
	"fixwell/pkg/config"
	apperrors "fixwell/pkg/errors"
	"fixwell/pkg/model"
	"fixwell/pkg/timeutil"
)

type RuleService interface {
	Create(ctx context.Context, rule *model.AvailabilityRule) error
	GetByID(ctx context.Context, id string) (*model.AvailabilityRule, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.AvailabilityRule, int64, error)
	ResolveForDay(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error)
	Update(ctx context.Context, id string, patch *model.AvailabilityRulePatch) error
	Delete(ctx context.Context, id string) error
}

type ruleService struct {
	repo      repository.RuleRepository
	validator *validator.RuleValidator
	cfg       *config.Config
}

func NewRuleService(
	repo repository.RuleRepository,
	validator *validator.RuleValidator,
	cfg *config.Config,
) RuleService {
	return &ruleService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *ruleService) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	s.sanitize(rule)
	s.applyDefaults(rule)

	if err := s.validator.Validate(rule); err != nil {
		s.cfg.Log.Warn("Availability rule validation failed",
			"day_of_week", rule.DayOfWeek,
			"error", err,
		)
		return apperrors.Validation("Availability rule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkOverlap(sessCtx, rule, ""); err != nil {
			return err
		}
		return s.repo.Create(sessCtx, rule)
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeRuleConflict) {
			return err
		}
		s.cfg.Log.Error("Failed to create availability rule",
			"day_of_week", rule.DayOfWeek,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Availability rule created",
		"id", rule.ID,
		"day_of_week", rule.DayOfWeek,
		"start_time", rule.StartTime,
		"end_time", rule.EndTime,
		"service_type_id", derefOrEmpty(rule.ServiceTypeID),
	)
	return nil
}

func (s *ruleService) GetByID(ctx context.Context, id string) (*model.AvailabilityRule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rule ID cannot be empty")
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ruleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability rule", id)
		}
		if errors.Is(err, ruleerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid rule ID format")
		}
		s.cfg.Log.Error("Failed to get availability rule", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability rule", err)
	}

	return rule, nil
}

func (s *ruleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.AvailabilityRule, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var rules []*model.AvailabilityRule
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count availability rules", "error", err)
			errCount = apperrors.Internal("Failed to count availability rules", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		rules, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list availability rules",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve availability rules", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return rules, count, nil
}

// ResolveForDay returns the effective availability windows for one day.
// Service-specific rules, when any exist for the requested service type,
// replace the general rules entirely. Rules flagged unavailable drop out
// of the result; a day whose only rules are unavailable resolves to none.
func (s *ruleService) ResolveForDay(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, apperrors.InvalidInput("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}

	dayRules, err := s.repo.FindByDay(ctx, dayOfWeek)
	if err != nil {
		s.cfg.Log.Error("Failed to load rules for day", "day_of_week", dayOfWeek, "error", err)
		return nil, apperrors.Internal("Failed to resolve availability rules", err)
	}

	var general, specific []*model.AvailabilityRule
	for _, rule := range dayRules {
		switch {
		case rule.ServiceTypeID == nil:
			general = append(general, rule)
		case serviceTypeID != "" && *rule.ServiceTypeID == serviceTypeID:
			specific = append(specific, rule)
		}
	}

	chosen := general
	if len(specific) > 0 {
		chosen = specific
	}

	var effective []*model.AvailabilityRule
	for _, rule := range chosen {
		if rule.IsAvailable {
			effective = append(effective, rule)
		}
	}

	return effective, nil
}

func (s *ruleService) Update(ctx context.Context, id string, patch *model.AvailabilityRulePatch) error {
	if id == "" {
		return apperrors.InvalidInput("Rule ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ruleerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability rule", id)
		}
		if errors.Is(err, ruleerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid rule ID format")
		}
		return apperrors.Internal("Failed to check rule existence", err)
	}

	merged := s.mergePatch(existing, patch)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Availability rule validation failed",
			"id", id,
			"error", err,
		)
		return apperrors.Validation("Availability rule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkOverlap(sessCtx, merged, id); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			s.cfg.Log.Error("Failed to update availability rule", "id", id, "error", err)
			return apperrors.Internal("Failed to update availability rule", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Availability rule updated", "id", id)
	return nil
}

func (s *ruleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Rule ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ruleerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability rule", id)
		}
		if errors.Is(err, ruleerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid rule ID format")
		}
		s.cfg.Log.Error("Failed to delete availability rule", "id", id, "error", err)
		return apperrors.Internal("Failed to delete availability rule", err)
	}

	s.cfg.Log.Info("Availability rule deleted", "id", id)
	return nil
}

// checkOverlap enforces that no two rules for the same day and scope have
// intersecting time windows. excludeID skips the rule being updated.
func (s *ruleService) checkOverlap(ctx context.Context, rule *model.AvailabilityRule, excludeID string) error {
	dayRules, err := s.repo.FindByDay(ctx, rule.DayOfWeek)
	if err != nil {
		return apperrors.Internal("Failed to check for overlapping rules", err)
	}

	start, err := timeutil.TimeToMinutes(rule.StartTime)
	if err != nil {
		return apperrors.InvalidInput("invalid start_time: " + rule.StartTime)
	}
	end, err := timeutil.TimeToMinutes(rule.EndTime)
	if err != nil {
		return apperrors.InvalidInput("invalid end_time: " + rule.EndTime)
	}

	for _, existing := range dayRules {
		if existing.ID == excludeID {
			continue
		}
		if !sameScope(existing.ServiceTypeID, rule.ServiceTypeID) {
			continue
		}

		existingStart, err := timeutil.TimeToMinutes(existing.StartTime)
		if err != nil {
			continue
		}
		existingEnd, err := timeutil.TimeToMinutes(existing.EndTime)
		if err != nil {
			continue
		}

		if timeutil.IntervalsOverlap(start, end, existingStart, existingEnd) {
			return apperrors.RuleConflict(existing.StartTime, existing.EndTime)
		}
	}

	return nil
}

func (s *ruleService) sanitize(rule *model.AvailabilityRule) {
	rule.StartTime = strings.TrimSpace(rule.StartTime)
	rule.EndTime = strings.TrimSpace(rule.EndTime)
	if rule.ServiceTypeID != nil {
		trimmed := strings.TrimSpace(*rule.ServiceTypeID)
		if trimmed == "" {
			rule.ServiceTypeID = nil
		} else {
			rule.ServiceTypeID = &trimmed
		}
	}
}

func (s *ruleService) applyDefaults(rule *model.AvailabilityRule) {
	if rule.MaxBookingsPerDay == 0 {
		rule.MaxBookingsPerDay = s.cfg.DefaultMaxBookingsPerDay
	}
}

func (s *ruleService) mergePatch(existing *model.AvailabilityRule, patch *model.AvailabilityRulePatch) *model.AvailabilityRule {
	merged := *existing

	if patch.DayOfWeek != nil {
		merged.DayOfWeek = *patch.DayOfWeek
	}
	if patch.IsAvailable != nil {
		merged.IsAvailable = *patch.IsAvailable
	}
	if patch.StartTime != nil {
		merged.StartTime = strings.TrimSpace(*patch.StartTime)
	}
	if patch.EndTime != nil {
		merged.EndTime = strings.TrimSpace(*patch.EndTime)
	}
	if patch.ServiceTypeID != nil {
		trimmed := strings.TrimSpace(*patch.ServiceTypeID)
		if trimmed == "" {
			merged.ServiceTypeID = nil
		} else {
			merged.ServiceTypeID = &trimmed
		}
	}
	if patch.BufferMinutes != nil {
		merged.BufferMinutes = *patch.BufferMinutes
	}
	if patch.MaxBookingsPerDay != nil {
		merged.MaxBookingsPerDay = *patch.MaxBookingsPerDay
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}

func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
