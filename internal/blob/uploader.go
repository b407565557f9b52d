// Package blob writes attachment bytes to the S3-compatible object store and
// builds the public URLs the app serves receipts from.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object is a stored receipt reference, persisted verbatim on the
// transaction document as the comprovante field (or an attachments entry).
type Object struct {
	URL      string `firestore:"url" json:"url"`
	Key      string `firestore:"key" json:"key"`
	FileName string `firestore:"fileName" json:"fileName"`
	Size     int64  `firestore:"size" json:"size"`
	Type     string `firestore:"type" json:"type"`
}

// Uploader uploads receipt files for one user. It is created once per run
// and reused for every upload in that run.
type Uploader struct {
	client    *minio.Client
	bucket    string
	prefix    string
	publicURL string
	userID    string

	now func() time.Time
}

// Options configures an Uploader. Endpoint is a full URL; the scheme decides
// TLS. PublicURL is the externally reachable base the bucket is served from.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	PublicURL string
	UserID    string
}

// NewUploader creates an Uploader against the configured endpoint.
func NewUploader(opts Options) (*Uploader, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("blob: parsing endpoint %q: %w", opts.Endpoint, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("blob: endpoint %q has no host", opts.Endpoint)
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: u.Scheme != "http",
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("blob: creating client: %w", err)
	}

	return &Uploader{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    opts.Prefix,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		userID:    opts.UserID,
		now:       time.Now,
	}, nil
}

// Upload writes data under a timestamped key and returns the stored
// reference. The declared content type is set on the object so the public
// URL serves it correctly.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType, fileName string) (*Object, error) {
	key := ObjectKey(u.prefix, u.userID, fileName, u.now())

	_, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("blob: putting object %s: %w", key, err)
	}

	return &Object{
		URL:      u.publicURL + "/" + key,
		Key:      key,
		FileName: fileName,
		Size:     int64(len(data)),
		Type:     contentType,
	}, nil
}

// ObjectKey builds the storage key for a receipt:
// [<prefix>/]comprovantes/<userID>/<millis>_<sanitized name>.
func ObjectKey(prefix, userID, fileName string, ts time.Time) string {
	base := "comprovantes"
	if prefix != "" {
		base = prefix + "/comprovantes"
	}
	return fmt.Sprintf("%s/%s/%d_%s", base, userID, ts.UnixMilli(), SanitizeFileName(fileName))
}

// SanitizeFileName replaces every rune that is not alphanumeric, '.', or '-'
// with '_', yielding a key-safe name. Applying it twice changes nothing.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
