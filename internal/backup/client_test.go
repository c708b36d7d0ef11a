package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewClient(t *testing.T) {
	log := zerolog.New(io.Discard)

	tests := []struct {
		name            string
		accountID       string
		accessKeyID     string
		secretAccessKey string
		bucketName      string
		expectError     bool
		errorContains   string
	}{
		{
			name:            "valid credentials",
			accountID:       "test-account-id",
			accessKeyID:     "test-access-key",
			secretAccessKey: "test-secret-key",
			bucketName:      "test-bucket",
			expectError:     false,
		},
		{
			name:            "missing account ID",
			accountID:       "",
			accessKeyID:     "test-access-key",
			secretAccessKey: "test-secret-key",
			bucketName:      "test-bucket",
			expectError:     true,
			errorContains:   "backup credentials incomplete",
		},
		{
			name:            "missing access key",
			accountID:       "test-account-id",
			accessKeyID:     "",
			secretAccessKey: "test-secret-key",
			bucketName:      "test-bucket",
			expectError:     true,
			errorContains:   "backup credentials incomplete",
		},
		{
			name:            "missing secret key",
			accountID:       "test-account-id",
			accessKeyID:     "test-access-key",
			secretAccessKey: "",
			bucketName:      "test-bucket",
			expectError:     true,
			errorContains:   "backup credentials incomplete",
		},
		{
			name:            "missing bucket name",
			accountID:       "test-account-id",
			accessKeyID:     "test-access-key",
			secretAccessKey: "test-secret-key",
			bucketName:      "",
			expectError:     true,
			errorContains:   "backup credentials incomplete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.accountID, tt.accessKeyID, tt.secretAccessKey, tt.bucketName, log)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errorContains)
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error containing %q, got %q", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if client.bucket != tt.bucketName {
				t.Errorf("expected bucket %q, got %q", tt.bucketName, client.bucket)
			}
			if client.client == nil || client.uploader == nil || client.downloader == nil {
				t.Error("expected client, uploader and downloader to be initialized")
			}
		})
	}
}

// TestClientMethods is a structure test only: it asserts the methods
// exist with the right signatures. Real R2 access is exercised by
// deployment smoke tests, not unit tests.
func TestClientMethods(t *testing.T) {
	log := zerolog.New(io.Discard)

	client, err := NewClient("test-account", "test-key", "test-secret", "test-bucket", log)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx := context.Background()

	t.Run("Upload", func(t *testing.T) {
		reader := bytes.NewReader([]byte("test data"))
		_ = client.Upload(ctx, "test-key", reader, 9)
	})

	t.Run("Download", func(t *testing.T) {
		buffer := &bytes.Buffer{}
		writerAt := &writerAtWrapper{w: buffer}
		_, _ = client.Download(ctx, "test-key", writerAt)
	})

	t.Run("List", func(t *testing.T) {
		_, _ = client.List(ctx, "")
	})

	t.Run("Delete", func(t *testing.T) {
		_ = client.Delete(ctx, "test-key")
	})

	t.Run("TestConnection", func(t *testing.T) {
		_ = client.TestConnection(ctx)
	})

	t.Run("GetObjectMetadata", func(t *testing.T) {
		_, _ = client.GetObjectMetadata(ctx, "test-key")
	})
}

// writerAtWrapper adapts a sequential io.Writer to io.WriterAt for tests
// that don't need random-access writes.
type writerAtWrapper struct {
	w      io.Writer
	offset int64
}

func (w *writerAtWrapper) WriteAt(p []byte, off int64) (n int, err error) {
	if off != w.offset {
		return 0, errors.New("writerAtWrapper only supports sequential writes")
	}
	n, err = w.w.Write(p)
	w.offset += int64(n)
	return n, err
}
