package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid" // For generating unique identifiers for S3 keys
	log "github.com/sirupsen/logrus"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/storage"
)

var (
	ErrUnsupportedMedia = errors.New("only video uploads are allowed")
	ErrUploadURLError   = errors.New("failed to generate upload URL")
	ErrNoMedia          = errors.New("exercise has no video")
)

type MediaService interface {
	// RequestUpload presigns a PUT for a demo video of the exercise.
	RequestUpload(ctx context.Context, userID, exerciseID, contentType string) (*domain.MediaUpload, error)
	// ConfirmUpload stores the object key on the exercise and deletes the
	// video it replaces.
	ConfirmUpload(ctx context.Context, userID, exerciseID, objectKey string) (*domain.Exercise, error)
	// DownloadURL presigns a GET for anyone who can read the exercise's workout.
	DownloadURL(ctx context.Context, userID, exerciseID string) (*domain.MediaLink, error)
}

type mediaService struct {
	*Content
	fileStorage storage.FileStorage
	expiry      time.Duration
	now         func() time.Time
}

func NewMediaService(content *Content, fileStorage storage.FileStorage, expiry time.Duration) MediaService {
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	return &mediaService{Content: content, fileStorage: fileStorage, expiry: expiry, now: time.Now}
}

func (s *mediaService) RequestUpload(ctx context.Context, userID, exerciseID, contentType string) (*domain.MediaUpload, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "video/") {
		return nil, ErrUnsupportedMedia
	}
	ex, _, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	objectKey := path.Join("exercises", ex.ID, uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, mediaType, s.expiry)
	if err != nil {
		log.Errorf("presign upload for exercise %s: %s", ex.ID, err)
		return nil, ErrUploadURLError
	}
	return &domain.MediaUpload{
		UploadURL:   uploadURL,
		ObjectKey:   objectKey,
		ContentType: mediaType,
		ExpiresAt:   s.now().Add(s.expiry).UTC(),
	}, nil
}

func (s *mediaService) ConfirmUpload(ctx context.Context, userID, exerciseID, objectKey string) (*domain.Exercise, error) {
	ex, w, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	// keys are minted by RequestUpload for this exercise only
	if !strings.HasPrefix(objectKey, path.Join("exercises", ex.ID)+"/") || strings.Contains(objectKey, "..") {
		return nil, validationError("object key does not belong to exercise %s", ex.ID)
	}

	unlock := s.lock(ex.ID)
	defer unlock()
	previous := ex.MediaKey
	if err := s.repos.Exercises.Update(ctx, ex.ID, domain.ExercisePatch{MediaKey: &objectKey}); err != nil {
		return nil, notFound(err, ErrExerciseNotFound, "update exercise media")
	}
	s.invalidateWorkout(w)

	if previous != "" && previous != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, previous); err != nil {
			// the exercise already points at the new video
			log.Warnf("delete replaced video %s: %s", previous, err)
		}
	}
	return s.exerciseView(ctx, ex.ID)
}

func (s *mediaService) DownloadURL(ctx context.Context, userID, exerciseID string) (*domain.MediaLink, error) {
	ex, err := s.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, notFound(err, ErrExerciseNotFound, "get exercise")
	}
	if _, err := s.readableWorkout(ctx, userID, ex.WorkoutID); err != nil {
		return nil, err
	}
	if ex.MediaKey == "" {
		return nil, ErrNoMedia
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, ex.MediaKey, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return &domain.MediaLink{URL: url, ExpiresAt: s.now().Add(s.expiry).UTC()}, nil
}
