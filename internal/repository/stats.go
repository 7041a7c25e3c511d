package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/models"

	"gorm.io/gorm"
)

// MapPoint is a live crime with coordinates
type MapPoint struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	CrimeType    models.CrimeType    `json:"crime_type"`
	Verification models.Verification `json:"verification"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
	IncidentAt   time.Time           `json:"incident_at"`
}

type groupCount struct {
	Grp   string
	Total int64
}

// StatsRepository runs the aggregate queries behind the analytics dashboard
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountByType counts live crimes per crime type
func (r *StatsRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "crime_type")
}

// CountByVerification counts live crimes per verification state
func (r *StatsRepository) CountByVerification(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "verification")
}

func (r *StatsRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(&models.Crime{}).
		Select(column+" AS grp, COUNT(*) AS total").
		Where("is_live = ?", true).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count crimes by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Grp] = row.Total
	}
	return counts, nil
}

// CountLive counts crimes visible to the public
func (r *StatsRepository) CountLive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Crime{}).Where("is_live = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count live crimes: %w", err)
	}
	return count, nil
}

// CountReportedSince counts live crimes reported at or after since
func (r *StatsRepository) CountReportedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Crime{}).
		Where("is_live = ? AND reported_at >= ?", true, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent crimes: %w", err)
	}
	return count, nil
}

// MapPoints returns live crimes that carry coordinates
func (r *StatsRepository) MapPoints(ctx context.Context, limit int) ([]MapPoint, error) {
	points := make([]MapPoint, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Crime{}).
		Select("id, title, crime_type, verification, latitude, longitude, incident_at").
		Where("is_live = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", true).
		Order("incident_at DESC").
		Limit(limit).
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load map points: %w", err)
	}
	return points, nil
}
