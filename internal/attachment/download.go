package attachment

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mypay/organizze-sync/internal/mapping"
)

// MaxSize is the attachment size gate. Bodies at or above this are rejected
// after download and never retried.
const MaxSize = 10 * 1024 * 1024

// File is one downloaded attachment, alive only for the duration of a single
// download+upload operation.
type File struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Downloader fetches attachment bytes from their source URLs. Organizze
// serves attachments from two places: its own API (Basic auth required) and
// an S3 bucket (Basic auth rejected), so the auth header is chosen per URL.
type Downloader struct {
	email     string
	apiKey    string
	userAgent string
	http      *http.Client
}

// NewDownloader creates a Downloader using the same credentials as the
// Organizze API client.
func NewDownloader(email, apiKey string) *Downloader {
	return &Downloader{
		email:     email,
		apiKey:    apiKey,
		userAgent: fmt.Sprintf("myPay Sync (%s)", email),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Download fetches one attachment. Non-2xx responses and oversized bodies
// are errors; an oversized body is reported as ErrTooLarge so callers can
// count it as a deliberate skip instead of a failure.
func (d *Downloader) Download(ctx context.Context, sourceURL string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("attachment: building request for %s: %w", sourceURL, err)
	}

	// Amazon S3 presigned URLs reject the Authorization header outright, so
	// those are fetched anonymously.
	if !isS3URL(sourceURL) {
		req.SetBasicAuth(d.email, d.apiKey)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attachment: GET %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("attachment: GET %s returned status %d", sourceURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("attachment: reading body of %s: %w", sourceURL, err)
	}
	if len(data) >= MaxSize {
		return nil, fmt.Errorf("attachment: %s is %d bytes: %w", sourceURL, len(data), ErrTooLarge)
	}

	fileName := resolveFileName(resp.Header.Get("Content-Disposition"), sourceURL)

	return &File{
		Data:        data,
		ContentType: mapping.ResolveContentType(resp.Header.Get("Content-Type"), fileName),
		FileName:    fileName,
	}, nil
}

func isS3URL(u string) bool {
	return strings.Contains(u, "amazonaws.com")
}

// resolveFileName picks the attachment's file name: the Content-Disposition
// filename parameter when present and parseable, else the last URL path
// segment percent-decoded, else the literal "attachment".
func resolveFileName(contentDisposition, sourceURL string) string {
	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}

	if u, err := url.Parse(sourceURL); err == nil && u.Path != "" {
		segment := u.Path[strings.LastIndex(u.Path, "/")+1:]
		if decoded, err := url.PathUnescape(segment); err == nil {
			segment = decoded
		}
		if segment != "" {
			return segment
		}
	}

	return "attachment"
}
