package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is one persisted observable event of the attention controller.
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"index" json:"session_id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Kind      string         `gorm:"not null;index" json:"kind"`
	Component string         `gorm:"not null" json:"component"`
	Message   string         `json:"message"`
	Target    string         `json:"target,omitempty"`
	Method    string         `json:"method,omitempty"`
	ElapsedMs int64          `gorm:"not null;default:0" json:"elapsed_ms"` // time since last presence, when relevant
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type KindCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period           ReportPeriod `json:"period"`
	Sessions         int          `json:"sessions"`
	Pauses           int          `json:"pauses"`
	Resumes          int          `json:"resumes"`
	DispatchFailures int          `json:"dispatch_failures"`
	TargetNotFound   int          `json:"target_not_found"`
	AwaySeconds      int64        `json:"away_seconds"`
	LongestAway      int64        `json:"longest_away_seconds"`
	Kinds            []KindCount  `json:"kinds"`
	GeneratedAt      time.Time    `json:"generated_at"`
}
