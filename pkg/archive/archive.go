// Package archive implements the one concrete Archiver SPEC_FULL.md §6
// binds within this module's scope: uploading a pruneArchive backup
// stream to S3 via aws-sdk-go-v2, grounded on the teacher's
// pkg/blocks/store/s3/store.go client construction and PutObject call.
//
// The message archive proper (the durable store of every FIX/iLink3
// message ever sent or received) remains out of scope, per spec.md §1's
// "on-disk message archive storage" external collaborator -- this package
// only moves the Badger sequence-store backup stream produced by
// internal/seqstore.Store.Backup off-box.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config configures the S3 archiver. Bucket and KeyPrefix are parsed from
// an archive_backup_location of the form "s3://bucket/prefix" per
// SPEC_FULL.md §6. AccessKeyID/SecretAccessKey are only needed against
// S3-compatible endpoints that don't support the default credential
// chain (environment, shared config, instance profile); leave them
// empty to use that chain.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	KeyPrefix       string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
}

// Archiver uploads pruneArchive backup streams to S3. It implements
// internal/framer.Archiver (Archive(ctx, []byte) error).
type Archiver struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	now       func() time.Time
}

// New creates an Archiver with an existing S3 client.
func New(client *s3.Client, cfg Config) *Archiver {
	return &Archiver{client: client, bucket: cfg.Bucket, keyPrefix: cfg.KeyPrefix, now: time.Now}
}

// NewFromConfig creates an Archiver, building its own S3 client from cfg.
func NewFromConfig(ctx context.Context, cfg Config) (*Archiver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return New(client, cfg), nil
}

// Archive uploads data as one S3 object keyed by keyPrefix plus a
// timestamped backup name, matching internal/framer.Archiver.
func (a *Archiver) Archive(ctx context.Context, data []byte) error {
	key := a.objectKey()
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put object %s/%s: %w", a.bucket, key, err)
	}
	return nil
}

func (a *Archiver) objectKey() string {
	return fmt.Sprintf("%sseqstore-%s.backup", a.keyPrefix, a.now().UTC().Format("20060102T150405Z"))
}
