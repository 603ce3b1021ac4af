package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumaker/internal/config"
)

// ObjectStore 是 API 与 worker 依赖的对象存储能力。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration, downloadName string) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// Client 读写走内部地址，签名链接用公开地址生成，否则浏览器拿到的是容器内主机名。
type Client struct {
	rw     *minio.Client
	signer *minio.Client
	bucket string
}

var _ ObjectStore = (*Client)(nil)

func parseBucketLookup(raw string) (minio.BucketLookupType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return minio.BucketLookupAuto, nil
	case "dns":
		return minio.BucketLookupDNS, nil
	case "path":
		return minio.BucketLookupPath, nil
	}
	return minio.BucketLookupAuto, fmt.Errorf("invalid minio bucket lookup %q", raw)
}

// NewClient 建立内外两个 MinIO 客户端并确认 Bucket 可用。
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	lookup, err := parseBucketLookup(cfg.BucketLookup)
	if err != nil {
		return nil, err
	}
	dial := func(host string, secure bool) (*minio.Client, error) {
		return minio.New(host, &minio.Options{
			Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Secure:       secure,
			Region:       cfg.Region,
			BucketLookup: lookup,
		})
	}

	rw, err := dial(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	signer := rw
	if cfg.PublicEndpoint != "" {
		public, err := url.Parse(cfg.PublicEndpoint)
		if err != nil || public.Host == "" {
			return nil, fmt.Errorf("invalid minio public endpoint %q", cfg.PublicEndpoint)
		}
		if signer, err = dial(public.Host, public.Scheme == "https"); err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	c := &Client{rw: rw, signer: signer, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.ensureBucket(ctx, cfg.Region, cfg.AutoCreateBucket); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string, create bool) error {
	exists, err := c.rw.BucketExists(ctx, c.bucket)
	switch {
	case err != nil:
		return fmt.Errorf("check bucket %q: %w", c.bucket, err)
	case exists:
		return nil
	case !create:
		return fmt.Errorf("bucket %q does not exist and auto create is off", c.bucket)
	}
	if err := c.rw.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket %q: %w", c.bucket, err)
	}
	return nil
}

func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := c.rw.PutObject(ctx, c.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "private, max-age=0",
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", objectName, err)
	}
	return nil
}

// GeneratePresignedURL 生成限时 GET 链接；downloadName 非空时附带下载文件名。
func (c *Client) GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration, downloadName string) (string, error) {
	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition", "attachment; filename*=UTF-8''"+url.PathEscape(downloadName))
	}
	u, err := c.signer.PresignedGetObject(ctx, c.bucket, objectKey, duration, params)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", objectKey, err)
	}
	return u.String(), nil
}

// DeletePrefix 批量删除前缀下的对象；Bucket 或对象已不存在时视为成功。
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || prefix == "/" {
		return nil
	}

	listed := c.rw.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	toRemove := make(chan minio.ObjectInfo)
	var listErr error
	go func() {
		defer close(toRemove)
		for obj := range listed {
			if obj.Err != nil {
				if !IsNoSuchBucket(obj.Err) {
					listErr = fmt.Errorf("list objects under %q: %w", prefix, obj.Err)
				}
				return
			}
			select {
			case toRemove <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errs []error
	for res := range c.rw.RemoveObjects(ctx, c.bucket, toRemove, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && !IsNoSuchKey(res.Err) {
			errs = append(errs, fmt.Errorf("remove %q: %w", res.ObjectName, res.Err))
		}
	}
	// RemoveObjects 在 toRemove 关闭后才结束，此时 listErr 已写完
	return errors.Join(append(errs, listErr)...)
}
