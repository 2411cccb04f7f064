// Package s3prices implements the price provider on top of a CSV price
// archive kept in an S3 compatible bucket, one object per ticker.
package s3prices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// quoteCandles is how many trailing daily rows back the last quote
const quoteCandles = 10

// Downloader fetches an object into a WriterAt; manager.Downloader satisfies it
type Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// Config holds the bucket location and credentials
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // optional, for R2/MinIO style endpoints
	AccessKeyID     string
	SecretAccessKey string
}

// Client serves price series from CSV objects at <prefix>/<TICKER>.csv
type Client struct {
	downloader Downloader
	bucket     string
	prefix     string
	now        func() time.Time
	log        zerolog.Logger
}

// NewClient builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewClientWithDownloader(manager.NewDownloader(s3Client), cfg.Bucket, cfg.Prefix, log), nil
}

// NewClientWithDownloader creates a client over an existing downloader
func NewClientWithDownloader(d Downloader, bucket, prefix string, log zerolog.Logger) *Client {
	return &Client{
		downloader: d,
		bucket:     bucket,
		prefix:     strings.Trim(prefix, "/"),
		now:        time.Now,
		log:        log.With().Str("client", "s3prices").Logger(),
	}
}

// FetchPriceSeries returns the archived closes of ticker inside period,
// resampled to interval.
func (c *Client) FetchPriceSeries(ctx context.Context, ticker, period, interval string) ([]domain.PricePoint, error) {
	rows, err := c.load(ctx, ticker)
	if err != nil {
		return nil, err
	}

	start, err := periodStart(period, c.now().UTC())
	if err != nil {
		return nil, err
	}
	rows = since(rows, start)

	points, err := resample(rows, interval)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no price data for %s in %s", ticker, period)
	}
	return points, nil
}

// FetchLastQuote returns the newest archived row. Country is not archived.
func (c *Client) FetchLastQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	rows, err := c.load(ctx, ticker)
	if errors.Is(err, errNoObject) {
		return nil, fmt.Errorf("%s: %w", ticker, domain.ErrNoQuoteData)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) > quoteCandles {
		rows = rows[len(rows)-quoteCandles:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, domain.ErrNoQuoteData)
	}

	last := rows[len(rows)-1]
	return &domain.Quote{
		Ticker:    ticker,
		LastDate:  last.date.Format("2006-01-02"),
		LastOpen:  last.open,
		LastClose: last.close,
	}, nil
}

var errNoObject = errors.New("no archived prices")

func (c *Client) key(ticker string) string {
	name := strings.ToUpper(ticker) + ".csv"
	if c.prefix == "" {
		return name
	}
	return path.Join(c.prefix, name)
}

func (c *Client) load(ctx context.Context, ticker string) ([]row, error) {
	key := c.key(ticker)
	buf := manager.NewWriteAtBuffer([]byte{})

	n, err := c.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%s (s3://%s/%s): %w", ticker, c.bucket, key, errNoObject)
		}
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", c.bucket, key, err)
	}

	rows, err := parseCSV(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse s3://%s/%s: %w", c.bucket, key, err)
	}

	c.log.Debug().
		Str("ticker", ticker).
		Str("key", key).
		Int64("bytes", n).
		Int("rows", len(rows)).
		Msg("Loaded archived prices")

	return rows, nil
}
