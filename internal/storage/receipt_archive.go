package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ikkim/manajir-storefront/internal/app/checkout"
)

const defaultURLExpiry = 24 * time.Hour

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the S3 endpoint (MinIO, localstack). Requests then
	// use path-style addressing.
	Endpoint  string
	Prefix    string
	BaseURL   string // CloudFront or custom domain; presigned GET when empty
	URLExpiry time.Duration
}

// ReceiptArchive keeps a JSON copy of every placed order's receipt in S3.
type ReceiptArchive struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	prefix    string
	baseURL   string
	urlExpiry time.Duration
	newID     func() string
}

func NewReceiptArchive(ctx context.Context, cfg S3Config) (*ReceiptArchive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("receipt archive bucket is required")
	}

	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}

	return &ReceiptArchive{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		urlExpiry: expiry,
		newID:     uuid.NewString,
	}, nil
}

// Archive uploads the receipt and returns a URL it can be downloaded from.
func (a *ReceiptArchive) Archive(ctx context.Context, receipt checkout.Receipt) (string, error) {
	body, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := a.key(receipt)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"order-id":    receipt.OrderID,
			"synthesized": fmt.Sprintf("%t", receipt.Synthesized),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}

	return a.URL(ctx, key)
}

// URL returns the public URL of key, or a presigned GET when no base URL
// is configured.
func (a *ReceiptArchive) URL(ctx context.Context, key string) (string, error) {
	if a.baseURL != "" {
		return fmt.Sprintf("%s/%s", a.baseURL, key), nil
	}

	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.urlExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

// key: <prefix>/2006/01/02/<order id>-<uuid>.json
func (a *ReceiptArchive) key(receipt checkout.Receipt) string {
	placed := receipt.PlacedAt
	if placed.IsZero() {
		placed = time.Now()
	}
	orderID := strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(receipt.OrderID)
	name := fmt.Sprintf("%s/%s-%s.json", placed.UTC().Format("2006/01/02"), orderID, a.newID())
	if a.prefix == "" {
		return name
	}
	return a.prefix + "/" + name
}
