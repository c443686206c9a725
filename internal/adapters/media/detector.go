// Package media probes URLs for downloadable media and fetches media files
// to local temporary storage.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/satchel-io/satchel/internal/enrichment"
)

const probeTimeout = 5 * time.Second

// mediaTypes maps content-type prefixes to the media type recorded against
// the bookmark.
var mediaTypes = map[string]string{
	"video/": "video",
	"image/": "image",
	"audio/": "audio",
}

// Detector probes URLs with a HEAD request to determine whether they point
// at downloadable media.
type Detector struct {
	client *http.Client
	logger *slog.Logger
}

// NewDetector creates a Detector. A nil client gets a probe-scoped timeout.
func NewDetector(client *http.Client, logger *slog.Logger) *Detector {
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}
	return &Detector{
		client: client,
		logger: logger.With("system", "media"),
	}
}

// Detect issues a HEAD request and inspects the content type and length.
// URLs that do not resolve to a media content type report no media.
func (d *Detector) Detect(ctx context.Context, url string) (*enrichment.MediaProbe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &enrichment.MediaProbe{HasMedia: false}, nil
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType := classifyContentType(contentType)
	if mediaType == "" {
		return &enrichment.MediaProbe{HasMedia: false}, nil
	}

	probe := &enrichment.MediaProbe{
		HasMedia:      true,
		MediaType:     mediaType,
		EstimatedSize: resp.ContentLength,
		Quality:       "original",
	}

	d.logger.Debug("media detected",
		"url", url,
		"media_type", mediaType,
		"estimated_size", probe.EstimatedSize,
	)

	return probe, nil
}

func classifyContentType(contentType string) string {
	for prefix, mediaType := range mediaTypes {
		if strings.HasPrefix(contentType, prefix) {
			return mediaType
		}
	}
	return ""
}
