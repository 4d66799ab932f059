package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/indicae/backend/config"
)

// AvatarService stores uploaded profile pictures in S3 and hands back the
// public URL kept on the profile row.
type AvatarService struct {
	s3Config *config.S3Config
}

func NewAvatarService(s3Config *config.S3Config) *AvatarService {
	return &AvatarService{
		s3Config: s3Config,
	}
}

// UploadAvatar uploads image data to S3 and returns the public URL
func (s *AvatarService) UploadAvatar(ctx context.Context, userID uuid.UUID, imageData []byte, contentType string) (string, error) {
	if s.s3Config == nil || s.s3Config.Client == nil {
		return "", fmt.Errorf("avatar storage is not configured")
	}

	ext := extensionForContentType(contentType)
	if ext == "" {
		return "", fmt.Errorf("unsupported avatar content type: %s", contentType)
	}

	// One object per upload; old avatars stay behind until a retention job
	// cleans the prefix.
	fileName := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	return publicURL, nil
}

func extensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
