package filestorage

import (
	"context"
	"io"

	"github.com/SeakMengs/AutoSign/internal/config"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewMinioClient(cfg *config.MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
		Region: "us-east-1",
	})
}

// MinioStorage keeps uploaded pdfs in one bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(client *minio.Client, bucket string) *MinioStorage {
	return &MinioStorage{client: client, bucket: bucket}
}

func (s MinioStorage) Put(ctx context.Context, r io.Reader, fileName string, size int64, directory string) (*model.File, error) {
	info, err := util.UploadFileToS3(ctx, r, fileName, size, &util.FileUploadOptions{
		DirectoryPath: directory,
		UniquePrefix:  true,
		Bucket:        s.bucket,
		ContentType:   "application/pdf",
		S3:            s.client,
	})
	if err != nil {
		return nil, err
	}

	return &model.File{
		FileName:       fileName,
		UniqueFileName: info.Key,
		BucketName:     info.Bucket,
		Size:           info.Size,
	}, nil
}

func (s MinioStorage) Open(ctx context.Context, file model.File) (io.ReadCloser, error) {
	return file.Open(ctx, s.client)
}

func (s MinioStorage) Remove(ctx context.Context, file model.File) error {
	return file.Delete(ctx, s.client)
}
