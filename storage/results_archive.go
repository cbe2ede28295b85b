package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Nikman800/GambaGame/models"
)

// ResultsArchive writes final results snapshots as JSON objects.
type ResultsArchive struct {
	uploader FileUploader
}

func NewResultsArchive(uploader FileUploader) *ResultsArchive {
	return &ResultsArchive{uploader: uploader}
}

// ResultKey is the object key of the snapshot of bracketID taken at result.CreatedAt.
func ResultKey(bracketID string, result models.FinalResult) string {
	return fmt.Sprintf("brackets/%s/final-results/%d.json", bracketID, result.CreatedAt.UnixMilli())
}

// ArchiveFinalResult uploads result and returns its public URL, or its key
// when the bucket has no public URL.
func (a *ResultsArchive) ArchiveFinalResult(ctx context.Context, bracketID string, result models.FinalResult) (string, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode final results of %s: %w", bracketID, err)
	}

	uploaded, err := a.uploader.Upload(ctx, ResultKey(bracketID, result), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if uploaded.Location != "" {
		return uploaded.Location, nil
	}
	return uploaded.Key, nil
}
