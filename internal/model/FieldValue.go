package model

import "github.com/SeakMengs/AutoSign/pkg/autosign"

type FieldValue struct {
	BaseModel
	FieldID   string               `gorm:"type:text;not null;uniqueIndex:idx_field_values_field_session" json:"fieldId" form:"fieldId"`
	SessionID string               `gorm:"type:text;not null;uniqueIndex:idx_field_values_field_session;index" json:"sessionId" form:"sessionId"`
	ValueText string               `gorm:"type:text;not null;default:''" json:"valueText" form:"valueText"`
	ValueBool bool                 `gorm:"type:boolean;not null;default:false" json:"valueBool" form:"valueBool"`
	Source    autosign.ValueSource `gorm:"type:varchar(20);not null;default:signer" json:"source" form:"source"`

	Field   Field          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" form:"-"`
	Session SigningSession `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" form:"-"`
}

func (fv FieldValue) TableName() string {
	return "field_values"
}

func (fv FieldValue) ToAutoSignValue() autosign.Value {
	return autosign.Value{
		FieldID: fv.FieldID,
		Text:    fv.ValueText,
		Checked: fv.ValueBool,
		Source:  fv.Source,
	}
}

func NewFieldValue(sessionID string, v autosign.Value) FieldValue {
	source := v.Source
	if source == "" {
		source = autosign.ValueSourceSigner
	}

	return FieldValue{
		FieldID:   v.FieldID,
		SessionID: sessionID,
		ValueText: v.Text,
		ValueBool: v.Checked,
		Source:    source,
	}
}

func ToAutoSignValues(values []FieldValue) autosign.Values {
	out := make(autosign.Values, len(values))
	for _, v := range values {
		out[v.FieldID] = v.ToAutoSignValue()
	}
	return out
}
