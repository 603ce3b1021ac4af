package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("remove: %w", minio.ErrorResponse{Code: "NoSuchKey"})
	if !IsNoSuchKey(wrapped) {
		t.Fatalf("expected NoSuchKey to be detected")
	}
	if IsNoSuchBucket(wrapped) {
		t.Fatalf("NoSuchKey must not be treated as missing bucket")
	}
	if !IsNoSuchBucket(errors.New("gateway: The specified bucket does not exist")) {
		t.Fatalf("expected string fallback to detect missing bucket")
	}
	if IsNoSuchKey(nil) || IsNoSuchBucket(nil) {
		t.Fatalf("nil must not match")
	}
}

func TestObjectKeys(t *testing.T) {
	if got := PDFKey("abc"); got != "resumes/abc/resume.pdf" {
		t.Fatalf("PDFKey = %q", got)
	}
	if got := AvatarPrefix("abc"); got != "avatars/abc/" {
		t.Fatalf("AvatarPrefix = %q", got)
	}
	if got := ResumePrefix("abc"); got != "resumes/abc/" {
		t.Fatalf("ResumePrefix = %q", got)
	}
}

func TestParseBucketLookup(t *testing.T) {
	cases := map[string]minio.BucketLookupType{
		"":     minio.BucketLookupAuto,
		"auto": minio.BucketLookupAuto,
		"DNS":  minio.BucketLookupDNS,
		"path": minio.BucketLookupPath,
	}
	for raw, want := range cases {
		got, err := parseBucketLookup(raw)
		if err != nil || got != want {
			t.Fatalf("parseBucketLookup(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := parseBucketLookup("virtual"); err == nil {
		t.Fatalf("expected error for unknown lookup")
	}
}
