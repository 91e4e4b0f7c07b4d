package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultS3PageSize = 50

// S3API is the subset of the S3 client the gallery uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket          string
	Endpoint        string
	Region          string
	PublicURL       string
	AccessKeyID     string
	AccessKeySecret string
	PageSize        int
}

type S3Gallery struct { // implements Gallery
	client    S3API
	bucket    string
	publicURL string
	pageSize  int32
}

func NewS3Gallery(ctx context.Context, opts S3Options) (*S3Gallery, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.AccessKeySecret, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3GalleryFromClient(client, opts.Bucket, opts.PublicURL, opts.PageSize), nil
}

func NewS3GalleryFromClient(client S3API, bucket, publicURL string, pageSize int) *S3Gallery {
	if pageSize <= 0 {
		pageSize = DefaultS3PageSize
	}
	return &S3Gallery{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		pageSize:  int32(pageSize),
	}
}

// List returns one bucket page. The search term filters that page by key, so
// filtered pages may hold fewer items than the page size.
func (g *S3Gallery) List(ctx context.Context, q Query) (Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(g.bucket),
		MaxKeys: aws.Int32(g.pageSize),
	}
	if q.Continuation != "" {
		input.ContinuationToken = aws.String(q.Continuation)
	}

	out, err := g.client.ListObjectsV2(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("list bucket %s: %w", g.bucket, err)
	}

	term := strings.ToLower(q.SearchTerm)
	page := Page{}
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if key == "" || strings.HasSuffix(key, "/") {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(path.Base(key)), term) {
			continue
		}

		url := g.objectURL(key)
		page.Items = append(page.Items, imageItem(key, url, aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified)))
	}

	if aws.ToBool(out.IsTruncated) {
		page.Continuation = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

func (g *S3Gallery) Upload(ctx context.Context, name string, r io.Reader, size int64) error {
	key := path.Base(path.Clean("/" + name))
	if key == "/" || key == "." {
		return fmt.Errorf("invalid image name %q", name)
	}

	// PutObject needs a seekable body to sign the payload.
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read image %s: %w", key, err)
		}
		body = bytes.NewReader(data)
		size = int64(len(data))
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := g.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (g *S3Gallery) objectURL(key string) string {
	if g.publicURL == "" {
		return key
	}
	return g.publicURL + "/" + key
}
