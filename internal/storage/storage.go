// Package storage abstracts where uploaded media lives: a local uploads
// directory in development, an S3-compatible Spaces bucket behind a CDN in
// production. Either way SaveFile returns the URL players will fetch.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

type Storage interface {
	SaveFile(fileHeader *multipart.FileHeader, filename string) (string, error)
}

type LocalStorage struct {
	uploadDir string
	publicURL string
}

type SpacesStorage struct {
	client *s3.S3
	bucket string
	cdnURL string
}

// NewLocalStorage stores files under uploadDir and returns URLs rooted at
// publicURL (the path the server serves the directory from, e.g. "/uploads").
func NewLocalStorage(uploadDir, publicURL string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, publicURL: strings.TrimSuffix(publicURL, "/")}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("create spaces session: %w", err)
	}
	return &SpacesStorage{
		client: s3.New(sess),
		bucket: bucket,
		cdnURL: strings.TrimSuffix(cdnURL, "/"),
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// normalizeFilename strips characters that misbehave in URLs and appends a
// timestamp so repeated uploads of the same file never collide.
func normalizeFilename(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeChars.ReplaceAllString(base, "")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
}

func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader, filename string) (string, error) {
	name := normalizeFilename(filename)
	if err := os.MkdirAll(ls.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(ls.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return ls.publicURL + "/" + name, nil
}

func (ss *SpacesStorage) SaveFile(fileHeader *multipart.FileHeader, filename string) (string, error) {
	name := normalizeFilename(filename)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	key := "uploads/" + name
	_, err = ss.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentTypeFor(name)),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("spaces upload failed")
		return "", fmt.Errorf("upload to spaces: %w", err)
	}
	return ss.cdnURL + "/" + key, nil
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}

// MediaTypeFor classifies an upload as image or video for the player, which
// renders the two differently. Unknown extensions default to image.
func MediaTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".webm", ".mov", ".avi":
		return "video"
	default:
		return "image"
	}
}
