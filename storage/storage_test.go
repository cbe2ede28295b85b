package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Nikman800/GambaGame/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjectAPI struct {
	mock.Mock
	body []byte
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	args := m.Called(aws.ToString(params.Bucket), aws.ToString(params.Key), aws.ToString(params.ContentType))
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(aws.ToString(params.Bucket), aws.ToString(params.Key))
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func TestNewCloudflareR2UploaderRequiresConfig(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"})
	assert.Error(t, err)
}

func TestGetPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "brackets/1.json", "https://cdn.example.com/brackets/1.json"},
		{"https://cdn.example.com/", "/brackets/1.json", "https://cdn.example.com/brackets/1.json"},
		{"https://cdn.example.com/results", "brackets/1.json", "https://cdn.example.com/results/brackets/1.json"},
		{"", "brackets/1.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		u := newUploader(nil, "bucket", tt.base)
		assert.Equal(t, tt.want, u.GetPublicURL(tt.key), "base=%q key=%q", tt.base, tt.key)
	}
}

func TestUploadAndDelete(t *testing.T) {
	api := &mockObjectAPI{}
	api.On("PutObject", "bucket", "k.json", "application/json").
		Return(&s3.PutObjectOutput{ETag: aws.String(`"abc"`)}, nil).Once()
	api.On("DeleteObject", "bucket", "k.json").Return(&s3.DeleteObjectOutput{}, nil).Once()

	u := newUploader(api, "bucket", "https://cdn.example.com")
	res, err := u.Upload(context.Background(), "k.json", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", res.ETag)
	assert.Equal(t, "https://cdn.example.com/k.json", res.Location)

	require.NoError(t, u.Delete(context.Background(), "k.json"))
	api.AssertExpectations(t)
}

func TestUploadError(t *testing.T) {
	api := &mockObjectAPI{}
	api.On("PutObject", "bucket", "k.json", "application/json").Return(nil, errors.New("denied"))

	u := newUploader(api, "bucket", "")
	_, err := u.Upload(context.Background(), "k.json", "application/json", nil)
	assert.ErrorContains(t, err, "denied")
}

func TestResultsArchive(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	result := models.FinalResult{
		BracketWinner:    "A",
		SpectatorResults: []models.SpectatorResult{{Gambler: "g1", Points: 120}},
		HasSpectators:    true,
		CreatedAt:        created,
	}
	key := ResultKey("b1", result)
	assert.Equal(t, "brackets/b1/final-results/1714564800000.json", key)

	t.Run("public url", func(t *testing.T) {
		api := &mockObjectAPI{}
		api.On("PutObject", "bucket", key, "application/json").Return(&s3.PutObjectOutput{}, nil)

		archive := NewResultsArchive(newUploader(api, "bucket", "https://cdn.example.com"))
		loc, err := archive.ArchiveFinalResult(context.Background(), "b1", result)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/"+key, loc)

		var stored models.FinalResult
		require.NoError(t, json.Unmarshal(api.body, &stored))
		assert.Equal(t, "A", stored.BracketWinner)
		assert.Equal(t, 120, stored.SpectatorResults[0].Points)
	})

	t.Run("private bucket returns key", func(t *testing.T) {
		api := &mockObjectAPI{}
		api.On("PutObject", "bucket", key, "application/json").Return(&s3.PutObjectOutput{}, nil)

		loc, err := NewResultsArchive(newUploader(api, "bucket", "")).ArchiveFinalResult(context.Background(), "b1", result)
		require.NoError(t, err)
		assert.Equal(t, key, loc)
	})
}
