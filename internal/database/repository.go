package database

import (
	"time"

	"github.com/eyeremote/eyeremote/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Repository handles all database operations for controller events
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateEvent inserts a new event into the database
func (r *Repository) CreateEvent(event *models.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if result := r.db.Create(event); result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert event")
	}
	return nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	if result := r.db.Create(errorLog); result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetEventsSince retrieves all events since a given time, oldest first
func (r *Repository) GetEventsSince(since time.Time) ([]*models.Event, error) {
	var events []*models.Event
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC, id ASC").Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query events")
	}
	return events, nil
}

// GetEventsBetween retrieves events in [start, end), oldest first
func (r *Repository) GetEventsBetween(start, end time.Time) ([]*models.Event, error) {
	var events []*models.Event
	result := r.db.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC, id ASC").
		Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query events")
	}
	return events, nil
}

// GetRecentEvents returns the newest limit events, newest first
func (r *Repository) GetRecentEvents(limit int) ([]*models.Event, error) {
	var events []*models.Event
	result := r.db.Order("timestamp DESC, id DESC").Limit(limit).Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query recent events")
	}
	return events, nil
}

// CountKindsSince returns how many events of each kind were recorded since a
// given time. SQL does the counting.
func (r *Repository) CountKindsSince(since time.Time) ([]models.KindCount, error) {
	var counts []models.KindCount
	result := r.db.Model(&models.Event{}).
		Select("kind, COUNT(*) as count").
		Where("timestamp >= ?", since).
		Group("kind").
		Order("count DESC").
		Scan(&counts)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to count event kinds")
	}
	return counts, nil
}

// GetLatestEvent retrieves the most recent event, or nil when the store is empty
func (r *Repository) GetLatestEvent() (*models.Event, error) {
	var event models.Event
	result := r.db.Order("timestamp DESC, id DESC").First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// GetRecentErrors returns the newest limit error logs, newest first
func (r *Repository) GetRecentErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Order("timestamp DESC, id DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.Event{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// Clear removes all events and error logs from the database
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM events"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear events")
	}
	if result := r.db.Exec("DELETE FROM error_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
