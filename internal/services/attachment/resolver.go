// Package attachment resolves uploaded proof-of-payment files into stable
// media references that can be embedded in top-up requests.
package attachment

import (
	"context"
	"errors"
	"fmt"

	"payvault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmptyUpload = errors.New("empty upload")

// Upload describes a received multipart file. The raw bytes live in blob
// storage behind the reference; only metadata is recorded here.
type Upload struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedBy  uint
}

// Resolver stores an upload and returns its stable media reference.
// bind attaches the reference to its owning record inside the same
// transaction; if bind fails, the media row is rolled back with it so a
// refused attachment never leaves an orphan behind the ref.
type Resolver interface {
	Store(ctx context.Context, up Upload, bind func(ref string) error) (string, error)
}

type dbResolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) Resolver {
	return &dbResolver{db: db}
}

func (r *dbResolver) Store(ctx context.Context, up Upload, bind func(ref string) error) (string, error) {
	if up.FileName == "" || up.SizeBytes <= 0 {
		return "", ErrEmptyUpload
	}

	media := &models.Media{
		Ref:         "media/" + uuid.NewString(),
		FileName:    up.FileName,
		ContentType: up.ContentType,
		SizeBytes:   up.SizeBytes,
		UploadedBy:  up.UploadedBy,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(media).Error; err != nil {
			return fmt.Errorf("failed to store media: %w", err)
		}
		if bind != nil {
			return bind(media.Ref)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return media.Ref, nil
}
