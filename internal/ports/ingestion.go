package ports

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

const plainText = "text/plain"

// Payload is one ingestion request as received by a transport
type Payload struct {
	ContentType string
	Body        []byte
}

// IngestionService validates line batches and hands them to storage
type IngestionService struct {
	store domain.ReadingStore
}

// NewIngestionService creates an ingestion service backed by store
func NewIngestionService(store domain.ReadingStore) *IngestionService {
	return &IngestionService{store: store}
}

// Ingest validates every line of the payload and stores the whole batch,
// or nothing. It returns the number of lines stored.
func (s *IngestionService) Ingest(ctx context.Context, p Payload) (int, error) {
	if !isPlainText(p.ContentType) {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedContent, p.ContentType)
	}

	body := strings.TrimSpace(string(p.Body))
	if body == "" {
		return 0, domain.ErrEmptyPayload
	}

	var lines []string
	for i, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if _, err := domain.ParseLine(line); err != nil {
			log.Warn().
				Int("line", i+1).
				Err(err).
				Msg("rejecting batch with invalid line")
			return 0, err
		}
		lines = append(lines, line)
	}

	if err := s.store.SaveRawLines(ctx, lines); err != nil {
		log.Error().
			Err(err).
			Int("lines", len(lines)).
			Msg("failed to store batch")
		return 0, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	log.Info().
		Int("lines", len(lines)).
		Msg("ingested batch")
	return len(lines), nil
}

// isPlainText accepts text/plain with any parameters, such as a charset
func isPlainText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == plainText
}
