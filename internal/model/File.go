package model

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
)

type File struct {
	BaseModel
	FileName       string `gorm:"type:text;not null" json:"fileName" form:"fileName" binding:"required"`
	UniqueFileName string `gorm:"type:text;not null;uniqueIndex" json:"uniqueFileName" form:"uniqueFileName" binding:"required"`
	BucketName     string `gorm:"type:text;not null" json:"bucketName" form:"bucketName" binding:"required"`
	Size           int64  `gorm:"type:bigint;not null" json:"size" form:"size" binding:"required"`
}

func (f File) TableName() string {
	return "files"
}

func (f File) validate() error {
	if f.BucketName == "" || f.UniqueFileName == "" {
		return errors.New("bucket name and unique file name cannot be empty")
	}
	return nil
}

func (f File) ToPresignedUrl(ctx context.Context, s3 *minio.Client, expiry time.Duration) (string, error) {
	if err := f.validate(); err != nil {
		return "", err
	}

	presignedURL, err := s3.PresignedGetObject(ctx, f.BucketName, f.UniqueFileName, expiry, nil)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

// Open streams the object, caller must close the reader.
func (f File) Open(ctx context.Context, s3 *minio.Client) (io.ReadCloser, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	obj, err := s3.GetObject(ctx, f.BucketName, f.UniqueFileName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (f File) Delete(ctx context.Context, s3 *minio.Client) error {
	if err := f.validate(); err != nil {
		return err
	}

	return s3.RemoveObject(ctx, f.BucketName, f.UniqueFileName, minio.RemoveObjectOptions{})
}

func (f File) ToBaseFilename() string {
	return filepath.Base(f.FileName)
}
