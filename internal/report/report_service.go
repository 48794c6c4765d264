package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-leavetrack/internal/authz"
	"go-leavetrack/internal/balance"
	balanceerrors "go-leavetrack/internal/balance/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache keys. Report reads tolerate slightly stale data, so lifecycle
// writes never invalidate these; the short TTL bounds the staleness.
const (
	summaryKeyPrefix  = "reports:summary:"
	onLeaveKeyPrefix  = "reports:onleave:"
	calendarKeyPrefix = "reports:calendar:"

	cacheTTL = 5 * time.Minute
)

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	YearSummary(ctx context.Context, actor authz.Actor, employeeID string, year int) (YearSummaryResponse, error)
	OnLeave(ctx context.Context, actor authz.Actor, day time.Time) ([]OnLeaveEntry, error)
	MonthCalendar(ctx context.Context, actor authz.Actor, year int, month time.Month) (MonthCalendarResponse, error)
}

type service struct {
	repo     Repository
	balances balance.Repository
	rdb      *redis.Client
	sf       *singleflight.Group
	authz    authz.Service
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	balances balance.Repository,
	rdb *redis.Client,
	authzService authz.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{
		repo:     repo,
		balances: balances,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		authz:    authzService,
		logger:   l,
	}
}

func (s *service) YearSummary(ctx context.Context, actor authz.Actor, employeeID string, year int) (YearSummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return YearSummaryResponse{}, balanceerrors.ErrInvalidEmployeeID
	}
	if employeeID != actor.ID {
		allowed, err := s.authz.Can(actor, authz.ResourceReport, authz.ActionReadAll)
		if err != nil {
			return YearSummaryResponse{}, err
		}
		if !allowed {
			return YearSummaryResponse{}, balanceerrors.ErrApproverRequired
		}
	}

	cacheKey := fmt.Sprintf("%s%s:%d", summaryKeyPrefix, employeeID, year)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		var resp YearSummaryResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return resp, nil
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		resp, err := s.buildYearSummary(ctx, employeeID, year)
		if err != nil {
			return nil, err
		}
		s.toCache(ctx, cacheKey, resp)
		return resp, nil
	})
	if err != nil {
		return YearSummaryResponse{}, err
	}
	return v.(YearSummaryResponse), nil
}

// buildYearSummary merges the ledger with the approved-request rollup. A
// ledger row with no approved requests still appears (zero usage), and an
// approved type missing its ledger row appears with allocated 0 so the
// anomaly is visible instead of hidden.
func (s *service) buildYearSummary(ctx context.Context, employeeID string, year int) (YearSummaryResponse, error) {
	ledger, err := s.balances.FindByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("summary ledger read failed", zap.String("employee_id", employeeID), zap.Error(err))
		return YearSummaryResponse{}, err
	}
	aggregates, err := s.repo.ApprovedByType(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("summary aggregate read failed", zap.String("employee_id", employeeID), zap.Error(err))
		return YearSummaryResponse{}, err
	}

	byType := make(map[string]ApprovedAggregate, len(aggregates))
	for _, a := range aggregates {
		byType[a.LeaveType] = a
	}

	resp := YearSummaryResponse{EmployeeID: employeeID, Year: year}
	seen := make(map[string]bool, len(ledger))
	for _, b := range ledger {
		agg := byType[b.LeaveType]
		seen[b.LeaveType] = true
		resp.Types = append(resp.Types, TypeSummary{
			LeaveType:        b.LeaveType,
			Allocated:        b.Allocated.String(),
			Used:             b.Used.String(),
			Remaining:        b.Remaining().String(),
			ApprovedRequests: agg.Requests,
			ApprovedDays:     agg.Days.String(),
		})
	}
	for _, a := range aggregates {
		if seen[a.LeaveType] {
			continue
		}
		resp.Types = append(resp.Types, TypeSummary{
			LeaveType:        a.LeaveType,
			Allocated:        decimal.Zero.String(),
			Used:             decimal.Zero.String(),
			Remaining:        decimal.Zero.String(),
			ApprovedRequests: a.Requests,
			ApprovedDays:     a.Days.String(),
		})
	}
	return resp, nil
}

func (s *service) OnLeave(ctx context.Context, actor authz.Actor, day time.Time) ([]OnLeaveEntry, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	cacheKey := onLeaveKeyPrefix + day.Format("2006-01-02")

	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		var resp []OnLeaveEntry
		if err := json.Unmarshal(cached, &resp); err == nil {
			return resp, nil
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		absences, err := s.repo.AbsencesOn(ctx, day)
		if err != nil {
			s.logger.Error("on-leave read failed", zap.Time("day", day), zap.Error(err))
			return nil, err
		}
		resp := make([]OnLeaveEntry, len(absences))
		for i, a := range absences {
			resp[i] = OnLeaveEntry{
				EmployeeID:    a.EmployeeID,
				FullName:      a.FullName,
				LeaveType:     a.LeaveType,
				StartDate:     a.StartDate.Format("2006-01-02"),
				EndDate:       a.EndDate.Format("2006-01-02"),
				IsHalfDay:     a.IsHalfDay,
				HalfDayPeriod: a.HalfDayPeriod,
			}
		}
		s.toCache(ctx, cacheKey, resp)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]OnLeaveEntry), nil
}

func (s *service) MonthCalendar(ctx context.Context, actor authz.Actor, year int, month time.Month) (MonthCalendarResponse, error) {
	cacheKey := fmt.Sprintf("%s%d-%02d", calendarKeyPrefix, year, int(month))

	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		var resp MonthCalendarResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return resp, nil
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)

		absences, err := s.repo.AbsencesOverlapping(ctx, first, last)
		if err != nil {
			s.logger.Error("calendar read failed", zap.Int("year", year), zap.Int("month", int(month)), zap.Error(err))
			return MonthCalendarResponse{}, err
		}

		resp := buildCalendar(year, month, first, last, absences)
		s.toCache(ctx, cacheKey, resp)
		return resp, nil
	})
	if err != nil {
		return MonthCalendarResponse{}, err
	}
	return v.(MonthCalendarResponse), nil
}

func buildCalendar(year int, month time.Month, first, last time.Time, absences []Absence) MonthCalendarResponse {
	counts := make(map[string]int)
	for _, a := range absences {
		from := a.StartDate
		if from.Before(first) {
			from = first
		}
		to := a.EndDate
		if to.After(last) {
			to = last
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			counts[d.Format("2006-01-02")]++
		}
	}

	resp := MonthCalendarResponse{Year: year, Month: int(month)}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		resp.Days = append(resp.Days, CalendarDay{Date: key, Count: counts[key]})
	}
	return resp
}

func (s *service) fromCache(ctx context.Context, key string) ([]byte, bool) {
	if s.rdb == nil {
		return nil, false
	}
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	return []byte(cached), true
}

func (s *service) toCache(ctx context.Context, key string, v any) {
	if s.rdb == nil {
		return
	}
	jsonData, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, jsonData, cacheTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
