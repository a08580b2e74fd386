package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hotelier/internal/app/policies"
	"hotelier/internal/domain/invoice"
)

// Store archives rendered invoices as JSON objects in an S3-compatible
// bucket.
type Store struct {
	bucket         string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewStore(endpoint string, useSSL bool, accessKey, secretKey, bucket string, logger *slog.Logger) (*Store, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("archive: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("archive: bucket is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: create client: %w", err)
	}
	return &Store{bucket: bucket, client: client, logger: logger}, nil
}

type invoiceObject struct {
	ReservationID string        `json:"reservation_id"`
	IssuedAt      time.Time     `json:"issued_at"`
	Lines         []invoiceLine `json:"lines"`
	TotalCents    int64         `json:"total_cents"`
	Currency      string        `json:"currency"`
}

type invoiceLine struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	AmountCents int64  `json:"amount_cents"`
}

func (s *Store) Archive(ctx context.Context, inv invoice.Invoice) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	obj := invoiceObject{
		ReservationID: string(inv.ReservationID),
		IssuedAt:      inv.IssuedAt,
		TotalCents:    inv.Total.Cents,
		Currency:      inv.Total.Currency,
	}
	for _, line := range inv.Lines {
		obj.Lines = append(obj.Lines, invoiceLine{
			Kind:        string(line.Kind),
			Description: line.Description,
			Quantity:    line.Quantity,
			AmountCents: line.Amount.Cents,
		})
	}
	payload, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("archive: marshal invoice: %w", err)
	}
	key := fmt.Sprintf("invoices/%s/%s.json", inv.IssuedAt.UTC().Format("2006-01-02"), inv.ReservationID)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("archive: put object: %w", err)
	}
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	if s.logger != nil {
		s.logger.Info("invoice archived", "bucket", s.bucket, "key", key)
	}
	return location, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.bucketInitOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketInitErr = fmt.Errorf("archive: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.bucketInitErr = fmt.Errorf("archive: create bucket: %w", err)
		}
	})
	return s.bucketInitErr
}

var _ policies.InvoiceArchiver = (*Store)(nil)
