package user

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/repository"
	"quizduel/internal/service/delivery"
)

const MaxAvatarSize = 5 << 20

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStore is the subset of the MinIO client used for avatars.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UploadAvatar(ctx context.Context, id uuid.UUID, contentType string, size int64, reader io.Reader) (*domain.User, error)
	RegisterPushToken(ctx context.Context, id uuid.UUID, token string) error
}

type StorageOptions struct {
	Bucket         string
	PublicEndpoint string
	PublicUseSSL   bool
}

type service struct {
	userRepo repository.UserRepository
	store    ObjectStore
	storage  StorageOptions
	log      *logrus.Entry
}

func NewService(userRepo repository.UserRepository, store ObjectStore, storage StorageOptions, log *logrus.Entry) Service {
	return &service{userRepo: userRepo, store: store, storage: storage, log: log}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *service) UploadAvatar(ctx context.Context, id uuid.UUID, contentType string, size int64, reader io.Reader) (*domain.User, error) {
	if s.store == nil {
		return nil, fmt.Errorf("avatar storage unavailable")
	}
	ext, ok := allowedAvatarTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported avatar type %q", domain.ErrValidation, contentType)
	}
	if size <= 0 || size > MaxAvatarSize {
		return nil, fmt.Errorf("%w: avatar must be between 1 byte and 5MB", domain.ErrValidation)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	objectName := path.Join("avatars", id.String(), uuid.New().String()+ext)
	_, err = s.store.PutObject(ctx, s.storage.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	avatarURL := s.publicURL(objectName)
	if err := s.userRepo.UpdateAvatar(ctx, id, avatarURL); err != nil {
		_ = s.store.RemoveObject(ctx, s.storage.Bucket, objectName, minio.RemoveObjectOptions{})
		return nil, err
	}

	if old := user.AvatarURL; old != nil {
		if oldObject, ok := s.objectName(*old); ok {
			if err := s.store.RemoveObject(ctx, s.storage.Bucket, oldObject, minio.RemoveObjectOptions{}); err != nil {
				s.log.WithError(err).WithField("object", oldObject).Warn("failed to remove previous avatar")
			}
		}
	}

	user.AvatarURL = &avatarURL
	return user, nil
}

func (s *service) RegisterPushToken(ctx context.Context, id uuid.UUID, token string) error {
	if !delivery.IsExpoPushToken(token) {
		return fmt.Errorf("%w: not an Expo push token", domain.ErrValidation)
	}
	return s.userRepo.UpdatePushToken(ctx, id, token)
}

func (s *service) publicURL(objectName string) string {
	scheme := "http"
	if s.storage.PublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.storage.PublicEndpoint, s.storage.Bucket, objectName)
}

func (s *service) objectName(avatarURL string) (string, bool) {
	u, err := url.Parse(avatarURL)
	if err != nil {
		return "", false
	}
	prefix := "/" + s.storage.Bucket + "/"
	if u.Host != s.storage.PublicEndpoint || !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	return strings.TrimPrefix(u.Path, prefix), true
}
