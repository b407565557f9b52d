package attachment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDownload_SendsBasicAuth(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	d := NewDownloader("user@example.com", "secret")
	if _, err := d.Download(context.Background(), srv.URL+"/file.pdf"); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if gotAuth == "" {
		t.Error("Expected Authorization header on non-S3 URL, got none")
	}
	if gotAgent != "myPay Sync (user@example.com)" {
		t.Errorf("User-Agent = %q, want identifying client tag", gotAgent)
	}
}

func TestIsS3URL(t *testing.T) {
	if !isS3URL("https://bucket.s3.amazonaws.com/key") {
		t.Error("Expected amazonaws.com URL to be fetched unauthenticated")
	}
	if isS3URL("https://api.organizze.com.br/rest/v2/attachments/1") {
		t.Error("Expected API URL to be fetched with Basic auth")
	}
}

func TestDownload_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	d := NewDownloader("user@example.com", "secret")
	if _, err := d.Download(context.Background(), srv.URL+"/file.pdf"); err == nil {
		t.Fatal("Expected error for 403 response, got nil")
	}
}

func TestDownload_FileNameResolution(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		disposition string
		want        string
	}{
		{
			name:        "content-disposition wins",
			path:        "/files/ignored.bin",
			disposition: `attachment; filename="recibo.pdf"`,
			want:        "recibo.pdf",
		},
		{
			name: "last path segment",
			path: "/files/invoice.pdf",
			want: "invoice.pdf",
		},
		{
			name: "percent-decoded path segment",
			path: "/files/nota%20fiscal.pdf",
			want: "nota fiscal.pdf",
		},
		{
			name: "empty path falls back to placeholder",
			path: "/",
			want: "attachment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Write([]byte("data"))
			}))
			defer srv.Close()

			d := NewDownloader("user@example.com", "secret")
			file, err := d.Download(context.Background(), srv.URL+tt.path)
			if err != nil {
				t.Fatalf("Download failed: %v", err)
			}
			if file.FileName != tt.want {
				t.Errorf("FileName = %q, want %q", file.FileName, tt.want)
			}
		})
	}
}

func TestDownload_ContentTypeResolution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generic/invoice.pdf":
			w.Header().Set("Content-Type", "application/octet-stream")
		case "/typed/invoice.pdf":
			w.Header().Set("Content-Type", "image/png")
		}
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	d := NewDownloader("user@example.com", "secret")

	file, err := d.Download(context.Background(), srv.URL+"/generic/invoice.pdf")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if file.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf from extension", file.ContentType)
	}

	// A concrete header is kept verbatim even when the extension disagrees.
	file, err = d.Download(context.Background(), srv.URL+"/typed/invoice.pdf")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if file.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png from header", file.ContentType)
	}
}

func TestDownload_SizeGate(t *testing.T) {
	sizes := map[string]int{
		"/at-limit":    MaxSize,
		"/under-limit": MaxSize - 1,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, sizes[r.URL.Path]))
	}))
	defer srv.Close()

	d := NewDownloader("user@example.com", "secret")

	_, err := d.Download(context.Background(), srv.URL+"/at-limit")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Download of exactly 10 MiB: err = %v, want ErrTooLarge", err)
	}

	file, err := d.Download(context.Background(), srv.URL+"/under-limit")
	if err != nil {
		t.Fatalf("Download of 10 MiB - 1 failed: %v", err)
	}
	if len(file.Data) != MaxSize-1 {
		t.Errorf("Data length = %d, want %d", len(file.Data), MaxSize-1)
	}
}
