package model

import (
	"time"

	"github.com/SeakMengs/AutoSign/internal/constant"
)

type ActivityLog struct {
	BaseModel

	EventType constant.ActivityEvent `gorm:"type:varchar(50);not null;" json:"eventType" form:"eventType" binding:"required"`
	Actor     string                 `gorm:"type:text;not null;" json:"actor" form:"actor" binding:"required"`
	Detail    string                 `gorm:"type:text;not null;" json:"detail" form:"detail"`
	Timestamp time.Time              `gorm:"type:timestamptz;not null;" json:"timestamp" form:"timestamp"`

	DocumentID string   `gorm:"type:text;not null;index" json:"documentId" form:"documentId"`
	Document   Document `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" form:"-"`
}

func (al ActivityLog) TableName() string {
	return "activity_logs"
}
