package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Package storage holds the object store used for experience photos and avatars.
// Uploads stream straight to the bucket; nothing touches local disk.

// MaxImageSize is the largest accepted image upload.
const MaxImageSize = 10 << 20

var (
	ErrUnsupportedImage = errors.New("only jpeg, png and webp images are accepted")
	ErrImageTooLarge    = errors.New("image exceeds 10 MiB")
	ErrEmptyImage       = errors.New("image is empty")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, -1 otherwise.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ImageExtension validates an upload and returns the extension its key should carry.
func ImageExtension(contentType string, size int64) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExtensions[ct]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if size == 0 {
		return "", ErrEmptyImage
	}
	if size > MaxImageSize {
		return "", ErrImageTooLarge
	}
	return ext, nil
}

// ExperienceImageKey builds the key for a new photo of an experience.
func ExperienceImageKey(experienceID, ext string) string {
	return path.Join("experiences", experienceID, uuid.NewString()+ext)
}

// AvatarKey builds the key for a new avatar of a user.
func AvatarKey(userID, ext string) string {
	return path.Join("avatars", userID, uuid.NewString()+ext)
}
