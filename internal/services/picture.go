package services

import (
	"context"
	"fmt"
	"time"

	appconfig "barhop-backend/internal/config"
	"barhop-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// contentNotifier is the post-write side-effect pipeline as seen by
// the content creation services.
type contentNotifier interface {
	PictureCreated(ctx context.Context, entry models.PictureFeedEntry)
	ReviewCreated(ctx context.Context, entry models.ReviewFeedEntry)
}

// eventSource resolves the event a picture is posted to.
type eventSource interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

// pictureStore is the write side of the event picture repository.
type pictureStore interface {
	Create(ctx context.Context, p *models.EventPicture) error
	UpdateImageURL(ctx context.Context, pictureID, imageURL string) error
	GetFeedEntry(ctx context.Context, id string) (*models.PictureFeedEntry, error)
}

// PictureService handles event picture creation and uploads
type PictureService struct {
	pictures pictureStore
	events   eventSource
	notifier contentNotifier
	s3Client *s3.Client
	s3Bucket string
}

// NewPictureService creates a new picture service. A custom endpoint
// with static credentials is used when configured (S3-compatible
// storage); otherwise the default AWS credential chain applies.
func NewPictureService(
	pictures pictureStore,
	events eventSource,
	notifier contentNotifier,
	awsCfg appconfig.AWSConfig,
) (*PictureService, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(awsCfg.Region),
	}
	if awsCfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKey, awsCfg.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if awsCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &PictureService{
		pictures: pictures,
		events:   events,
		notifier: notifier,
		s3Client: s3Client,
		s3Bucket: awsCfg.S3Bucket,
	}, nil
}

// CreatePictureRequest represents a request to post an event picture
type CreatePictureRequest struct {
	Description string `json:"description"`
	ContentType string `json:"content_type"`
}

// CreatePictureResponse carries the created picture and a pre-signed
// URL the client uploads the image bytes to.
type CreatePictureResponse struct {
	Picture   *models.EventPicture `json:"picture"`
	UploadURL string               `json:"upload_url"`
	ExpiresIn int                  `json:"expires_in"`
}

// CreatePicture persists a picture record for an event, fans it out
// to its recipients and returns a pre-signed upload URL. Fan-out
// failures never fail the write.
func (s *PictureService) CreatePicture(ctx context.Context, eventID, userID string, req CreatePictureRequest) (*CreatePictureResponse, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	pictureID := uuid.New().String()
	s3Key := fmt.Sprintf("%s/%s.jpg", event.ID, pictureID)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(s3Key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 5 * time.Minute
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	// image_url stays null until the client reports photo_uploaded;
	// the picture still appears in feeds meanwhile.
	picture := &models.EventPicture{
		ID:          pictureID,
		EventID:     event.ID,
		UserID:      userID,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.pictures.Create(ctx, picture); err != nil {
		return nil, fmt.Errorf("failed to create picture record: %w", err)
	}

	if entry, err := s.pictures.GetFeedEntry(ctx, pictureID); err == nil {
		s.notifier.PictureCreated(ctx, *entry)
	} else {
		log.Error().Err(err).Str("picture_id", pictureID).Msg("Failed to load picture for fan-out")
	}

	return &CreatePictureResponse{
		Picture:   picture,
		UploadURL: request.URL,
		ExpiresIn: 300,
	}, nil
}

// CompleteUpload records the final image URL after the client has
// uploaded the picture bytes.
func (s *PictureService) CompleteUpload(ctx context.Context, pictureID, imageURL string) error {
	return s.pictures.UpdateImageURL(ctx, pictureID, imageURL)
}
