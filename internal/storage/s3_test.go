package storage

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"roster/internal/config"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 answers the GetObject and PutObject subset without network access.
type fakeS3 struct {
	mu    sync.Mutex
	state map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch req.Method {
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		f.state[key] = body
		return respond(req, http.StatusOK, nil, map[string]string{"ETag": `"etag"`}), nil
	case http.MethodGet:
		body, ok := f.state[key]
		if !ok {
			xml := `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`
			return respond(req, http.StatusNotFound, []byte(xml), map[string]string{"Content-Type": "application/xml"}), nil
		}
		return respond(req, http.StatusOK, body, map[string]string{"Content-Type": "application/json"}), nil
	}
	return respond(req, http.StatusMethodNotAllowed, nil, nil), nil
}

func respond(req *http.Request, status int, body []byte, headers map[string]string) *http.Response {
	h := make(http.Header)
	for k, v := range headers {
		h.Set(k, v)
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{
		StatusCode:    status,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func newFakeS3(t *testing.T, prefix string) *S3 {
	t.Helper()
	rt := &fakeS3{state: make(map[string][]byte)}
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIA", "SECRET", ""),
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return NewS3FromClient(client, "roster-bucket", prefix)
}

func configFor(driver string) config.Storage {
	return config.Storage{Driver: driver, Key: config.DefaultStorageKey}
}
