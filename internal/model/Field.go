package model

import "github.com/SeakMengs/AutoSign/pkg/autosign"

type Field struct {
	BaseModel
	Type       autosign.FieldType `gorm:"type:varchar(20);not null" json:"type" form:"type" binding:"required"`
	Page       uint               `gorm:"type:integer;not null" json:"page" form:"page" binding:"required"`
	X          float64            `gorm:"type:double precision;not null" json:"x" form:"x"`
	Y          float64            `gorm:"type:double precision;not null" json:"y" form:"y"`
	Width      float64            `gorm:"type:double precision;not null" json:"width" form:"width" binding:"required"`
	Height     float64            `gorm:"type:double precision;not null" json:"height" form:"height" binding:"required"`
	Required   bool               `gorm:"type:boolean;not null;default:false" json:"required" form:"required"`
	AssignedTo *string            `gorm:"type:citext;default:null" json:"assignedTo" form:"assignedTo"`
	Label      string             `gorm:"type:varchar(200)" json:"label" form:"label"`
	FontSize   float64            `gorm:"type:double precision;not null;default:0" json:"fontSize" form:"fontSize"`
	SortOrder  int                `gorm:"type:integer;not null;default:0" json:"-" form:"-"`

	DocumentID string   `gorm:"type:text;not null;index" json:"documentId" form:"documentId"`
	Document   Document `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" form:"-"`
}

func (f Field) TableName() string {
	return "fields"
}

func (f Field) ToAutoSignField() autosign.Field {
	return autosign.Field{
		ID:   f.ID,
		Type: f.Type,
		Page: f.Page,
		Rect: autosign.Rect{
			Position: autosign.Position{X: f.X, Y: f.Y},
			Size:     autosign.Size{Width: f.Width, Height: f.Height},
		},
		Required:   f.Required,
		AssignedTo: autosign.NormalizeAssignee(f.AssignedTo),
		Label:      f.Label,
		FontSize:   f.FontSize,
	}
}

func NewField(documentID string, f autosign.Field, order int) Field {
	return Field{
		BaseModel:  BaseModel{ID: f.ID},
		Type:       f.Type,
		Page:       f.Page,
		X:          f.X,
		Y:          f.Y,
		Width:      f.Width,
		Height:     f.Height,
		Required:   f.Required,
		AssignedTo: autosign.NormalizeAssignee(f.AssignedTo),
		Label:      f.Label,
		FontSize:   f.FontSize,
		SortOrder:  order,
		DocumentID: documentID,
	}
}

func ToAutoSignFields(fields []Field) []autosign.Field {
	out := make([]autosign.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.ToAutoSignField())
	}
	return out
}
