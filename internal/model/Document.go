package model

type Document struct {
	BaseModel
	Title     string `gorm:"type:varchar(200);not null" json:"title" form:"title" binding:"required"`
	OwnerID   string `gorm:"type:text;not null;index" json:"ownerId" form:"ownerId"`
	PageCount int    `gorm:"type:integer;not null" json:"pageCount" form:"pageCount"`
	PdfFileID string `gorm:"type:text;not null" json:"-" form:"pdfFileId"`

	PdfFile File `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-" form:"-"`
}

func (d Document) TableName() string {
	return "documents"
}
