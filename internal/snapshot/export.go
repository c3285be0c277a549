// Package snapshot exports the full set of page definitions as a dated YAML
// document, either to a local directory or an S3 bucket. The nightly job in
// the API server uses it as a cheap restore point for the editor's
// no-delete lifecycle.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

const snapshotVersion = "1.0"

// Document is the serialized snapshot structure.
type Document struct {
	Version string                    `yaml:"version"`
	TakenAt time.Time                 `yaml:"takenAt"`
	Pages   []*pagedef.PageDefinition `yaml:"pages"`
}

// Dest is the write target for a snapshot file.
type Dest interface {
	Write(ctx context.Context, name string, data []byte) error
}

// LocalDir writes snapshot files beneath a directory.
type LocalDir struct{ Path string }

func (l LocalDir) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(l.Path, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.Path, name), data, 0o644)
}

// S3 writes snapshot files into a bucket under a key prefix.
type S3 struct {
	Bucket string
	Prefix string
	client *s3.Client
}

// NewS3 builds an S3 destination from the ambient AWS config.
func NewS3(ctx context.Context, bucket, prefix string) (S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return S3{}, err
	}
	return S3{Bucket: bucket, Prefix: prefix, client: s3.NewFromConfig(cfg)}, nil
}

func (s S3) Write(ctx context.Context, name string, data []byte) error {
	key := filepath.Join(s.Prefix, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Lister loads every stored definition.
type Lister interface {
	ListAll(ctx context.Context) ([]*pagedef.PageDefinition, error)
}

// Export serializes all definitions and writes one dated file to dest.
func Export(ctx context.Context, pages Lister, dest Dest) error {
	defs, err := pages.ListAll(ctx)
	if err != nil {
		return err
	}
	doc := Document{Version: snapshotVersion, TakenAt: time.Now().UTC(), Pages: defs}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	fname := fmt.Sprintf("pages_%s.yaml", doc.TakenAt.Format("2006-01-02T15-04-05"))
	return dest.Write(ctx, fname, data)
}
