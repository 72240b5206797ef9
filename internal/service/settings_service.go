package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"go.uber.org/zap"
)

// Ключи таблицы settings
const (
	SettingBookingLimit   = "booking_limit"
	SettingCutoverWeekday = "cutover_weekday"
	SettingCutoverHour    = "cutover_hour"
)

// Policy is the quota configuration in effect.
type Policy struct {
	WeeklyQuota int
	Cutover     week.Rule
}

// SettingsService reads the quota policy at call time. Values stored by an
// admin win over the configured defaults.
type SettingsService struct {
	repo     ports.SettingsRepo
	defaults Policy
	logger   *zap.Logger
}

func NewSettingsService(repo ports.SettingsRepo, defaults Policy, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// Policy возвращает действующие квоту и правило смены недели
func (s *SettingsService) Policy(ctx context.Context) (Policy, error) {
	limit, err := s.WeeklyQuota(ctx)
	if err != nil {
		return Policy{}, err
	}
	rule, err := s.CutoverRule(ctx)
	if err != nil {
		return Policy{}, err
	}
	return Policy{WeeklyQuota: limit, Cutover: rule}, nil
}

// WeeklyQuota возвращает лимит броней на неделю
func (s *SettingsService) WeeklyQuota(ctx context.Context) (int, error) {
	n, ok, err := s.intSetting(ctx, SettingBookingLimit)
	if err != nil {
		return 0, err
	}
	if !ok || n < 0 {
		return s.defaults.WeeklyQuota, nil
	}
	return n, nil
}

// CutoverRule возвращает правило смены активной недели
func (s *SettingsService) CutoverRule(ctx context.Context) (week.Rule, error) {
	rule := s.defaults.Cutover

	raw, ok, err := s.repo.Get(ctx, SettingCutoverWeekday)
	if err != nil {
		return week.Rule{}, fmt.Errorf("get cutover weekday: %w", err)
	}
	if ok {
		if d, err := week.ParseWeekday(raw); err == nil {
			rule.Weekday = d
		} else {
			s.logger.Warn("Ignoring invalid cutover weekday", zap.String("value", raw))
		}
	}

	hour, ok, err := s.intSetting(ctx, SettingCutoverHour)
	if err != nil {
		return week.Rule{}, err
	}
	if ok {
		rule.Hour = hour
	}

	if err := rule.Validate(); err != nil {
		s.logger.Warn("Stored cutover rule is invalid, using default", zap.Error(err))
		return s.defaults.Cutover, nil
	}
	return rule, nil
}

// SetWeeklyQuota сохраняет новый лимит (только админ)
func (s *SettingsService) SetWeeklyQuota(ctx context.Context, actor model.Actor, limit int) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}
	if limit < 0 {
		return fmt.Errorf("%w: quota must not be negative", model.ErrInvalidInput)
	}

	if err := s.repo.Set(ctx, SettingBookingLimit, strconv.Itoa(limit)); err != nil {
		return model.Classify(fmt.Errorf("save weekly quota: %w", err))
	}

	s.logger.Info("Weekly quota changed", zap.Int("limit", limit))
	return nil
}

// SetCutoverRule сохраняет правило смены недели (только админ)
func (s *SettingsService) SetCutoverRule(ctx context.Context, actor model.Actor, rule week.Rule) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}
	if err := rule.Validate(); err != nil {
		return err
	}

	if err := s.repo.Set(ctx, SettingCutoverWeekday, rule.Weekday.String()); err != nil {
		return model.Classify(fmt.Errorf("save cutover weekday: %w", err))
	}
	if err := s.repo.Set(ctx, SettingCutoverHour, strconv.Itoa(rule.Hour)); err != nil {
		return model.Classify(fmt.Errorf("save cutover hour: %w", err))
	}

	s.logger.Info("Cutover rule changed",
		zap.Stringer("weekday", rule.Weekday),
		zap.Int("hour", rule.Hour),
	)
	return nil
}

func (s *SettingsService) intSetting(ctx context.Context, key string) (int, bool, error) {
	raw, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return 0, false, fmt.Errorf("get setting %s: %w", key, err)
	}
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("Ignoring non-numeric setting", zap.String("key", key), zap.String("value", raw))
		return 0, false, nil
	}
	return n, true, nil
}
