package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Result holds the public locations of the published artifacts.
type Result struct {
	VideoURL     string
	ThumbnailURL string
}

// Publisher uploads a finished video and its thumbnail.
type Publisher interface {
	Publish(ctx context.Context, publicID, videoPath, thumbnailPath string) (Result, error)
}

// Config captures the runtime settings for S3-compatible publishing.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// Enabled reports whether remote publishing is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// UploadAPI is the subset of the transfer manager used by the publisher.
type UploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Publisher uploads artifacts to an S3-compatible bucket.
type S3Publisher struct {
	uploader      UploadAPI
	bucket        string
	publicBaseURL string
}

// NewS3Publisher builds a publisher backed by a real S3 client.
func NewS3Publisher(ctx context.Context, cfg Config) (*S3Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("storage: bucket required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(regionOrDefault(cfg.Region)),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3PublisherWithUploader(manager.NewUploader(client), cfg), nil
}

// NewS3PublisherWithUploader builds a publisher around an existing uploader.
func NewS3PublisherWithUploader(uploader UploadAPI, cfg Config) *S3Publisher {
	return &S3Publisher{
		uploader:      uploader,
		bucket:        strings.TrimSpace(cfg.Bucket),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}
}

// Publish uploads the video and thumbnail under keys derived from the
// job's public identifier.
func (p *S3Publisher) Publish(ctx context.Context, publicID, videoPath, thumbnailPath string) (Result, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return Result{}, errors.New("storage publish: public id required")
	}

	videoKey := "videos/" + publicID + ".mp4"
	thumbnailKey := "thumbnails/" + publicID + ".jpg"

	videoLocation, err := p.uploadFile(ctx, videoKey, videoPath, "video/mp4")
	if err != nil {
		return Result{}, err
	}
	thumbnailLocation, err := p.uploadFile(ctx, thumbnailKey, thumbnailPath, "image/jpeg")
	if err != nil {
		return Result{}, err
	}

	return Result{
		VideoURL:     p.publicURL(videoKey, videoLocation),
		ThumbnailURL: p.publicURL(thumbnailKey, thumbnailLocation),
	}, nil
}

func (p *S3Publisher) uploadFile(ctx context.Context, key, path, contentType string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("storage publish: open %s: %w", path, err)
	}
	defer file.Close()

	out, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage publish: upload %s: %w", key, err)
	}
	if out == nil {
		return "", nil
	}
	return out.Location, nil
}

func (p *S3Publisher) publicURL(key, uploadLocation string) string {
	if p.publicBaseURL != "" {
		return p.publicBaseURL + "/" + key
	}
	return uploadLocation
}

func regionOrDefault(region string) string {
	region = strings.TrimSpace(region)
	if region == "" {
		// R2 and other S3-compatible stores accept "auto".
		return "auto"
	}
	return region
}

// LocalPublisher leaves artifacts in place and reports file paths as URLs.
type LocalPublisher struct{}

// Publish verifies both artifacts exist and returns their paths.
func (LocalPublisher) Publish(ctx context.Context, publicID, videoPath, thumbnailPath string) (Result, error) {
	for _, path := range []string{videoPath, thumbnailPath} {
		info, err := os.Stat(path)
		if err != nil {
			return Result{}, fmt.Errorf("storage publish: stat %s: %w", path, err)
		}
		if info.Size() == 0 {
			return Result{}, fmt.Errorf("storage publish: %s is empty", path)
		}
	}
	return Result{VideoURL: videoPath, ThumbnailURL: thumbnailPath}, nil
}
