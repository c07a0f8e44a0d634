package model

import (
	"time"

	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
)

type SigningSession struct {
	BaseModel
	// Only the hash is stored, the plaintext token leaves the server once, inside the invitation
	TokenHash    string                 `gorm:"type:text;not null;uniqueIndex" json:"-" form:"-"`
	SignerName   string                 `gorm:"type:varchar(200);not null" json:"signerName" form:"signerName"`
	SignerEmail  string                 `gorm:"type:citext;not null;index" json:"signerEmail" form:"signerEmail"`
	SignerRole   string                 `gorm:"type:varchar(100)" json:"signerRole" form:"signerRole"`
	Status       constant.SessionStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status" form:"status"`
	SignedAt     *time.Time             `gorm:"type:timestamptz;default:null" json:"signedAt" form:"signedAt"`
	RevokedAt    *time.Time             `gorm:"type:timestamptz;default:null" json:"revokedAt,omitempty" form:"revokedAt"`
	AutoFilledAt *time.Time             `gorm:"type:timestamptz;default:null" json:"-" form:"-"`
	StyleFont    *string                `gorm:"type:varchar(100);default:null" json:"-" form:"-"`
	StyleText    *string                `gorm:"type:varchar(200);default:null" json:"-" form:"-"`

	DocumentID string   `gorm:"type:text;not null;index" json:"documentId" form:"documentId"`
	Document   Document `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" form:"-"`
}

func (ss SigningSession) TableName() string {
	return "signing_sessions"
}

func (ss SigningSession) Signer() autosign.Signer {
	return autosign.Signer{
		Name:  ss.SignerName,
		Email: ss.SignerEmail,
		Role:  ss.SignerRole,
	}
}

func (ss SigningSession) IsPending() bool {
	return ss.Status == constant.SessionStatusPending
}

func (ss SigningSession) SignatureStyle() *autosign.SignatureStyle {
	if ss.StyleFont == nil || ss.StyleText == nil {
		return nil
	}
	return &autosign.SignatureStyle{Font: *ss.StyleFont, Text: *ss.StyleText}
}
