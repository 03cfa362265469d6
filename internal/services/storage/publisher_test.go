package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeUploader struct {
	uploads map[string]string
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(input.Key)
	f.uploads[key] = aws.ToString(input.ContentType) + ":" + string(body)
	return &manager.UploadOutput{Location: "https://bucket.example/" + key}, nil
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestS3PublisherKeysAndContentTypes(t *testing.T) {
	dir := t.TempDir()
	video := writeArtifact(t, dir, "final_video.mp4", "video-bytes")
	thumb := writeArtifact(t, dir, "thumbnail.jpg", "jpeg-bytes")

	uploader := &fakeUploader{}
	pub := NewS3PublisherWithUploader(uploader, Config{Bucket: "clips"})

	result, err := pub.Publish(context.Background(), "abc-123", video, thumb)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := uploader.uploads["videos/abc-123.mp4"]; got != "video/mp4:video-bytes" {
		t.Fatalf("unexpected video upload %q", got)
	}
	if got := uploader.uploads["thumbnails/abc-123.jpg"]; got != "image/jpeg:jpeg-bytes" {
		t.Fatalf("unexpected thumbnail upload %q", got)
	}
	if result.VideoURL != "https://bucket.example/videos/abc-123.mp4" {
		t.Fatalf("unexpected video url %q", result.VideoURL)
	}
}

func TestS3PublisherPublicBaseURL(t *testing.T) {
	dir := t.TempDir()
	video := writeArtifact(t, dir, "final_video.mp4", "v")
	thumb := writeArtifact(t, dir, "thumbnail.jpg", "t")

	pub := NewS3PublisherWithUploader(&fakeUploader{}, Config{
		Bucket:        "clips",
		PublicBaseURL: "https://cdn.example/",
	})
	result, err := pub.Publish(context.Background(), "abc", video, thumb)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.VideoURL != "https://cdn.example/videos/abc.mp4" {
		t.Fatalf("unexpected video url %q", result.VideoURL)
	}
	if result.ThumbnailURL != "https://cdn.example/thumbnails/abc.jpg" {
		t.Fatalf("unexpected thumbnail url %q", result.ThumbnailURL)
	}
}

func TestS3PublisherMissingVideo(t *testing.T) {
	dir := t.TempDir()
	thumb := writeArtifact(t, dir, "thumbnail.jpg", "t")

	pub := NewS3PublisherWithUploader(&fakeUploader{}, Config{Bucket: "clips"})
	if _, err := pub.Publish(context.Background(), "abc", filepath.Join(dir, "missing.mp4"), thumb); err == nil {
		t.Fatal("expected error for missing video file")
	}
}

func TestLocalPublisher(t *testing.T) {
	dir := t.TempDir()
	video := writeArtifact(t, dir, "final_video.mp4", "v")
	thumb := writeArtifact(t, dir, "thumbnail.jpg", "t")

	result, err := LocalPublisher{}.Publish(context.Background(), "abc", video, thumb)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.VideoURL != video || result.ThumbnailURL != thumb {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestLocalPublisherEmptyArtifact(t *testing.T) {
	dir := t.TempDir()
	video := writeArtifact(t, dir, "final_video.mp4", "")
	thumb := writeArtifact(t, dir, "thumbnail.jpg", "t")

	if _, err := (LocalPublisher{}).Publish(context.Background(), "abc", video, thumb); err == nil {
		t.Fatal("expected error for empty video file")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatal("empty config should not be enabled")
	}
	if !(Config{Bucket: "clips"}).Enabled() {
		t.Fatal("config with bucket should be enabled")
	}
}
