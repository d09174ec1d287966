package internal

import (
	"time"
)

type Link struct {
	ID          int64      `gorm:"primaryKey;type:bigint;autoIncrement:false"`
	Slug        string     `gorm:"type:varchar(30);uniqueIndex;not null"`
	OriginalURL string     `gorm:"type:text;not null"`
	HitCount    int64      `gorm:"not null;default:0"`
	IsDeleted   bool       `gorm:"not null;default:false;index"`
	DeletedAt   *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;index"`
	Clicks      []Click    `gorm:"foreignKey:LinkID;constraint:OnDelete:RESTRICT"`
}

type Click struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	LinkID    int64     `gorm:"not null;index:idx_clicks_link_time,priority:1"`
	ClickedAt time.Time `gorm:"type:timestamptz;not null;index:idx_clicks_link_time,priority:2"`
	UserAgent *string   `gorm:"type:text"`
	Referrer  *string   `gorm:"type:text"`
	IP        *string   `gorm:"type:varchar(64)"`
}

// ClickEvent is one served redirect waiting to be written as a Click.
// It travels through the in-process tracking queue and, as JSON, through RabbitMQ.
type ClickEvent struct {
	LinkID    int64     `json:"link_id"`
	Slug      string    `json:"slug"`
	ClickedAt time.Time `json:"clicked_at"`
	UserAgent *string   `json:"user_agent,omitempty"`
	Referrer  *string   `json:"referrer,omitempty"`
	IP        *string   `json:"ip,omitempty"`
}

func (e ClickEvent) Click() Click {
	return Click{
		LinkID:    e.LinkID,
		ClickedAt: e.ClickedAt,
		UserAgent: e.UserAgent,
		Referrer:  e.Referrer,
		IP:        e.IP,
	}
}
