package server

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

//go:generate go tool counterfeiter -o mocks/fake_artifact_archive.go . ArtifactArchive

// ArtifactArchive mirrors finished artifacts to long term storage. It is write only: the
// local directory stays the source of truth for what can be served.
type ArtifactArchive interface {
	// Put uploads the artifact under its filename
	Put(ctx context.Context, artifact *Artifact) error

	// Close releases any resources held by the archive
	Close() error
}

var _ ArtifactArchive = (*MinIOArtifactArchive)(nil)

// MinIOArtifactArchive implements ArtifactArchive using MinIO/S3
type MinIOArtifactArchive struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOArtifactArchive creates the client and makes sure the bucket exists
func NewMinIOArtifactArchive(ctx context.Context, endpoint, accessKey, secretKey, bucketName, region string, useSSL bool) (*MinIOArtifactArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: region})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOArtifactArchive{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Put streams the artifact file into the bucket
func (m *MinIOArtifactArchive) Put(ctx context.Context, artifact *Artifact) error {
	if artifact == nil || artifact.Filename == "" {
		return fmt.Errorf("invalid artifact")
	}

	file, err := os.Open(artifact.Path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	_, err = m.client.PutObject(ctx, m.bucketName, artifact.Filename, file, artifact.Size, minio.PutObjectOptions{
		ContentType: ContentTypeFor(artifact.Filename),
		UserMetadata: map[string]string{
			"artifact-id": artifact.ID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to store artifact in MinIO: %w", err)
	}

	return nil
}

// Close closes the MinIO connection
func (m *MinIOArtifactArchive) Close() error {
	return nil
}
