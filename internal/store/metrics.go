package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"salon-queue-backend/internal/model"
)

// unspecifiedServiceLabel groups finished events whose client never picked a
// service from the catalog.
const unspecifiedServiceLabel = "Unspecified"

// AverageWaitSeconds computes the mean arrival-to-call wait over the whole
// event history. The second return value is false when no usable rows exist;
// callers must not confuse that with a zero wait. Rows with a zero timestamp
// are skipped rather than aborting the computation.
func (s *gormStore) AverageWaitSeconds(ctx context.Context) (float64, bool, error) {
	var rows []struct {
		EnteredAt time.Time
		CalledAt  time.Time
	}
	err := s.db.WithContext(ctx).
		Model(&model.ServiceEvent{}).
		Select("entered_at, called_at").
		Scan(&rows).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to scan wait times: %w", err)
	}

	var sum float64
	var n int
	for _, r := range rows {
		if r.EnteredAt.IsZero() || r.CalledAt.IsZero() {
			continue
		}
		sum += r.CalledAt.Sub(r.EnteredAt).Seconds()
		n++
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

// DailyRow is one calendar day of finished episodes.
type DailyRow struct {
	Day     string  `json:"day"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DailyReport groups finished events by the calendar day they finished,
// newest day first, capped at limitDays. Events with no recorded payment
// still count; they just contribute zero revenue.
//
// Day extraction happens here rather than in SQL because sqlite and postgres
// have no shared date-truncation syntax.
func (s *gormStore) DailyReport(ctx context.Context, limitDays int) ([]DailyRow, error) {
	var rows []struct {
		FinishedAt time.Time
		AmountPaid *float64
	}
	err := s.db.WithContext(ctx).
		Model(&model.ServiceEvent{}).
		Select("finished_at, amount_paid").
		Where("finished_at IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan finished events: %w", err)
	}

	byDay := make(map[string]*DailyRow)
	for _, r := range rows {
		day := r.FinishedAt.UTC().Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &DailyRow{Day: day}
			byDay[day] = row
		}
		row.Count++
		if r.AmountPaid != nil {
			row.Revenue += *r.AmountPaid
		}
	}

	report := make([]DailyRow, 0, len(byDay))
	for _, row := range byDay {
		report = append(report, *row)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Day > report[j].Day })
	if limitDays > 0 && len(report) > limitDays {
		report = report[:limitDays]
	}
	return report, nil
}

// Totals are the all-time aggregates over finished events.
type Totals struct {
	TotalRevenue  float64 `json:"total_revenue"`
	FinishedCount int64   `json:"finished_count"`
	AverageTicket float64 `json:"average_ticket"`
}

// AggregateTotals sums revenue and counts finished events. With nothing
// finished the average ticket is defined as zero, not an error.
func (s *gormStore) AggregateTotals(ctx context.Context) (Totals, error) {
	var agg struct {
		TotalRevenue  float64
		FinishedCount int64
	}
	err := s.db.WithContext(ctx).
		Model(&model.ServiceEvent{}).
		Select("COALESCE(SUM(amount_paid), 0) AS total_revenue, COUNT(*) AS finished_count").
		Where("finished_at IS NOT NULL").
		Scan(&agg).Error
	if err != nil {
		return Totals{}, fmt.Errorf("failed to aggregate totals: %w", err)
	}

	totals := Totals{TotalRevenue: agg.TotalRevenue, FinishedCount: agg.FinishedCount}
	if totals.FinishedCount > 0 {
		totals.AverageTicket = totals.TotalRevenue / float64(totals.FinishedCount)
	}
	return totals, nil
}

// ServiceUsage is one catalog entry's share of finished episodes.
type ServiceUsage struct {
	ServiceName string `json:"service_name"`
	Uses        int64  `json:"uses"`
}

// TopServices counts finished events per service, most used first, ties
// broken by lower service id so repeated calls return the same order.
func (s *gormStore) TopServices(ctx context.Context, n int) ([]ServiceUsage, error) {
	var rows []struct {
		ServiceName string
		Uses        int64
	}
	err := s.db.WithContext(ctx).
		Model(&model.ServiceEvent{}).
		Select("COALESCE(service_types.name, ?) AS service_name, COUNT(*) AS uses", unspecifiedServiceLabel).
		Joins("LEFT JOIN service_types ON service_types.id = service_events.service_type_id").
		Where("service_events.finished_at IS NOT NULL").
		Group("service_events.service_type_id, service_types.name").
		Order("uses DESC, COALESCE(service_events.service_type_id, 0) ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count service usage: %w", err)
	}

	usages := make([]ServiceUsage, 0, len(rows))
	for _, r := range rows {
		usages = append(usages, ServiceUsage{ServiceName: r.ServiceName, Uses: r.Uses})
	}
	return usages, nil
}

// FinishedEntry is one closed episode with its client and service detail.
type FinishedEntry struct {
	Event   model.ServiceEvent `json:"event"`
	Client  model.Client       `json:"client"`
	Service *model.ServiceType `json:"service,omitempty"`
}

// RecentFinished lists the latest closed episodes, newest first.
func (s *gormStore) RecentFinished(ctx context.Context, limit int) ([]FinishedEntry, error) {
	var events []model.ServiceEvent
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("ServiceType").
		Where("finished_at IS NOT NULL").
		Order("finished_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list finished events: %w", err)
	}

	entries := make([]FinishedEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, FinishedEntry{
			Event:   e,
			Client:  e.Client,
			Service: e.ServiceType,
		})
	}
	return entries, nil
}
