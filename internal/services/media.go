package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/config"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	uploadURLExpiry = 5 * time.Minute
	// an upload may be attached this long after its URL was issued
	attachWindow = time.Hour
)

// Presigner signs direct-to-bucket uploads. *s3.PresignClient satisfies it.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// NewS3Presigner builds a presign client from the storage configuration.
// Static keys and a custom endpoint are optional.
func NewS3Presigner(ctx context.Context, cfg config.AWSConfig) (*s3.PresignClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Filename    string `json:"filename" validate:"max=255"`
	ContentType string `json:"content_type" validate:"required,max=127"`
}

// UploadResponse carries the pre-signed URL and where the object will live
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	MediaID   string `json:"media_id"`
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// AttachMediaRequest records an uploaded object against a crime. ObjectKey is
// the key returned by CreateUploadURL.
type AttachMediaRequest struct {
	ObjectKey   string            `json:"object_key" validate:"required,max=512"`
	URL         string            `json:"url" validate:"omitempty,url"`
	Type        *models.MediaType `json:"type" validate:"omitnil,mediatype"`
	ContentType string            `json:"content_type" validate:"max=127"`
}

// MediaService handles the two-phase media upload: presign, then attach
type MediaService struct {
	mediaRepo *repository.MediaRepository
	crimeRepo *repository.CrimeRepository
	userRepo  *repository.UserRepository
	presigner Presigner
	bucket    string
	region    string
	publicURL string
	now       func() time.Time
}

// NewMediaService creates a new media service
func NewMediaService(
	mediaRepo *repository.MediaRepository,
	crimeRepo *repository.CrimeRepository,
	userRepo *repository.UserRepository,
	presigner Presigner,
	cfg config.AWSConfig,
) *MediaService {
	return &MediaService{
		mediaRepo: mediaRepo,
		crimeRepo: crimeRepo,
		userRepo:  userRepo,
		presigner: presigner,
		bucket:    cfg.S3Bucket,
		region:    cfg.Region,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		now:       time.Now,
	}
}

// CreateUploadURL signs a PUT for crimes/{crimeID}/{mediaID}{ext}
func (s *MediaService) CreateUploadURL(ctx context.Context, actorID, crimeID string, req UploadRequest) (*UploadResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, crimeID); err != nil {
		return nil, err
	}

	// v7 ids carry their issue time, which bounds when the upload can be attached
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate media id: %w", err)
	}
	mediaID := id.String()
	key := fmt.Sprintf("crimes/%s/%s%s", crimeID, mediaID, strings.ToLower(path.Ext(req.Filename)))

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		MediaID:   mediaID,
		ObjectKey: key,
		URL:       s.objectURL(key),
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}

func (s *MediaService) objectURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// AttachMedia records an object uploaded through CreateUploadURL. The key must
// belong to this crime and be attached within the upload window, once. The type
// is inferred from the content type or key extension when not given.
func (s *MediaService) AttachMedia(ctx context.Context, actorID, crimeID string, req AttachMediaRequest) (*models.Media, error) {
	req.ObjectKey = strings.TrimSpace(req.ObjectKey)
	req.URL = strings.TrimSpace(req.URL)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, crimeID); err != nil {
		return nil, err
	}

	mediaID, err := s.uploadedMediaID(crimeID, req.ObjectKey)
	if err != nil {
		return nil, err
	}
	url := s.objectURL(req.ObjectKey)
	if req.URL != "" && req.URL != url {
		return nil, apperr.Validation("url", "url does not match object_key")
	}

	mediaType := models.InferMediaType(req.ContentType, req.ObjectKey)
	if req.Type != nil {
		mediaType = *req.Type
	}

	media := &models.Media{
		ID:        mediaID,
		CrimeID:   crimeID,
		URL:       url,
		ObjectKey: req.ObjectKey,
		Type:      mediaType,
	}
	if err := s.mediaRepo.Create(ctx, media); err != nil {
		log.Error().
			Err(err).
			Str("crime_id", crimeID).
			Str("object_key", req.ObjectKey).
			Msg("Failed to attach media")
		return nil, err
	}
	return media, nil
}

// uploadedMediaID checks key has the crimes/{crimeID}/{mediaID}{ext} shape of
// an upload URL issued within attachWindow and returns its media id
func (s *MediaService) uploadedMediaID(crimeID, key string) (string, error) {
	prefix := "crimes/" + crimeID + "/"
	if !strings.HasPrefix(key, prefix) {
		return "", apperr.Validation("object_key", "object_key does not belong to this crime")
	}
	name := strings.TrimPrefix(key, prefix)
	id, err := uuid.Parse(strings.TrimSuffix(name, path.Ext(name)))
	if err != nil || id.Version() != 7 {
		return "", apperr.Validation("object_key", "object_key was not issued by this service")
	}

	// the first 48 bits of a v7 id are its unix millisecond timestamp
	var ms int64
	for _, b := range id[:6] {
		ms = ms<<8 | int64(b)
	}
	issued := time.UnixMilli(ms)
	now := s.now()
	if now.Sub(issued) > attachWindow || issued.After(now.Add(incidentClockSkew)) {
		return "", apperr.Validation("object_key", "upload window has expired")
	}
	return id.String(), nil
}

// ListMedia returns the media of a crime in upload order. viewerID may be empty.
func (s *MediaService) ListMedia(ctx context.Context, viewerID, crimeID string) ([]models.Media, error) {
	if _, err := visibleCrime(ctx, s.crimeRepo, s.userRepo, viewerID, crimeID); err != nil {
		return nil, err
	}
	return s.mediaRepo.ListByCrime(ctx, crimeID)
}

// authorize lets anyone attach to visible anonymous crimes and only the
// reporter or an admin attach to owned ones
func (s *MediaService) authorize(ctx context.Context, actorID, crimeID string) error {
	crime, err := visibleCrime(ctx, s.crimeRepo, s.userRepo, actorID, crimeID)
	if err != nil {
		return err
	}
	if crime.UserID == nil || crime.OwnedBy(actorID) {
		return nil
	}
	if actorID == "" {
		return apperr.Unauthorized("authentication required")
	}
	admin, err := isAdmin(ctx, s.userRepo, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.Forbidden("only the reporter can add media to this crime")
	}
	return nil
}
