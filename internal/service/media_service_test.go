package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

func TestMedia_RequestUpload(t *testing.T) {
	e := newTestEnv(t)
	ctrl := gomock.NewController(t)
	fs := NewMockFileStorage(ctrl)
	media := service.NewMediaService(e.content, fs, 10*time.Minute)
	_, ids := e.workoutWithExercises(t, "Clean")

	_, err := media.RequestUpload(e.ctx, owner, ids[0], "image/png")
	assert.ErrorIs(t, err, service.ErrUnsupportedMedia)
	_, err = media.RequestUpload(e.ctx, owner, ids[0], "not a type")
	assert.ErrorIs(t, err, service.ErrUnsupportedMedia)
	_, err = media.RequestUpload(e.ctx, stranger, ids[0], "video/mp4")
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	fs.EXPECT().
		GeneratePresignedUploadURL(gomock.Any(), gomock.Any(), "video/mp4", 10*time.Minute).
		DoAndReturn(func(_ context.Context, key, _ string, _ time.Duration) (string, error) {
			return "https://bucket.example.com/" + key + "?sig=1", nil
		})
	upload, err := media.RequestUpload(e.ctx, owner, ids[0], "video/mp4; codecs=avc1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "exercises/"+ids[0]+"/"))
	assert.Contains(t, upload.UploadURL, upload.ObjectKey)
	assert.Equal(t, "video/mp4", upload.ContentType)

	fs.EXPECT().GeneratePresignedUploadURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("no credentials"))
	_, err = media.RequestUpload(e.ctx, owner, ids[0], "video/webm")
	assert.ErrorIs(t, err, service.ErrUploadURLError)
}

func TestMedia_ConfirmReplacesPreviousVideo(t *testing.T) {
	e := newTestEnv(t)
	ctrl := gomock.NewController(t)
	fs := NewMockFileStorage(ctrl)
	media := service.NewMediaService(e.content, fs, 0)
	_, ids := e.workoutWithExercises(t, "Jerk")
	prefix := "exercises/" + ids[0] + "/"

	_, err := media.ConfirmUpload(e.ctx, owner, ids[0], "exercises/other/clip")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = media.ConfirmUpload(e.ctx, owner, ids[0], prefix+"../other/clip")
	assert.ErrorIs(t, err, service.ErrValidation)

	ex, err := media.ConfirmUpload(e.ctx, owner, ids[0], prefix+"first")
	require.NoError(t, err)
	assert.Equal(t, prefix+"first", ex.MediaKey)

	fs.EXPECT().DeleteObject(gomock.Any(), prefix+"first").Return(errors.New("gone already"))
	ex, err = media.ConfirmUpload(e.ctx, owner, ids[0], prefix+"second")
	require.NoError(t, err)
	assert.Equal(t, prefix+"second", ex.MediaKey)

	// confirming the same key again deletes nothing
	_, err = media.ConfirmUpload(e.ctx, owner, ids[0], prefix+"second")
	require.NoError(t, err)
}

func TestMedia_DownloadURL(t *testing.T) {
	e := newTestEnv(t)
	ctrl := gomock.NewController(t)
	fs := NewMockFileStorage(ctrl)
	media := service.NewMediaService(e.content, fs, 0)
	_, ids := e.workoutWithExercises(t, "Snatch")

	_, err := media.DownloadURL(e.ctx, owner, ids[0])
	assert.ErrorIs(t, err, service.ErrNoMedia)

	key := "exercises/" + ids[0] + "/clip"
	_, err = media.ConfirmUpload(e.ctx, owner, ids[0], key)
	require.NoError(t, err)

	_, err = media.DownloadURL(e.ctx, stranger, ids[0])
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	fs.EXPECT().GeneratePresignedDownloadURL(gomock.Any(), key, 15*time.Minute).Return("https://cdn.example.com/clip", nil)
	link, err := media.DownloadURL(e.ctx, owner, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/clip", link.URL)
	assert.False(t, link.ExpiresAt.IsZero())

	_, err = media.DownloadURL(e.ctx, owner, "missing")
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)
}
