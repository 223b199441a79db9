package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignTTL = 5 * time.Minute

// UploadService issues pre-signed S3 PUT URLs for option images. The
// client uploads directly to S3; the option's image_url is written at
// presign time and points at the final object location.
type UploadService struct {
	clashService *ClashService
	s3Client     *s3.Client
	bucket       string
	region       string
}

// NewUploadService creates a new upload service
func NewUploadService(clashService *ClashService, region, bucket, accessKey, secretKey, endpoint string) (*UploadService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &UploadService{
		clashService: clashService,
		s3Client:     s3Client,
		bucket:       bucket,
		region:       region,
	}, nil
}

// UploadResponse carries the pre-signed URL and the public object URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
	ExpiresIn int    `json:"expires_in"`
}

// GetOptionUploadURL generates a pre-signed PUT URL for an option image,
// scoped to the clash owner
func (s *UploadService) GetOptionUploadURL(ctx context.Context, clashID, ownerID, optionID, contentType string) (*UploadResponse, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("clashes/%s/%s.jpg", clashID, optionID)
	imageURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)

	// Ownership and option existence are checked here before anything is
	// signed; SetOptionImage fails for foreign clashes and unknown options.
	if err := s.clashService.SetOptionImage(ctx, clashID, ownerID, optionID, imageURL); err != nil {
		return nil, err
	}

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		ImageURL:  imageURL,
		ExpiresIn: int(presignTTL.Seconds()),
	}, nil
}
