package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const (
	documentsKey = "docfix:documents"
	checksumsKey = "docfix:checksums"
)

type Client struct {
	rdb *redis.Client
}

func New(addr string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		rdb.Close()
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Tracked documents
func (c *Client) AddDocument(ctx context.Context, path string) error {
	return c.rdb.SAdd(ctx, documentsKey, path).Err()
}

func (c *Client) RemoveDocument(ctx context.Context, path string) error {
	pipe := c.rdb.TxPipeline()
	pipe.SRem(ctx, documentsKey, path)
	pipe.HDel(ctx, checksumsKey, path)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Client) GetDocuments(ctx context.Context) ([]string, error) {
	return c.rdb.SMembers(ctx, documentsKey).Result()
}

func (c *Client) DocumentExists(ctx context.Context, path string) (bool, error) {
	return c.rdb.SIsMember(ctx, documentsKey, path).Result()
}

// Last processed checksums
func (c *Client) SetChecksum(ctx context.Context, path, sum string) error {
	return c.rdb.HSet(ctx, checksumsKey, path, sum).Err()
}

func (c *Client) GetChecksum(ctx context.Context, path string) (string, error) {
	sum, err := c.rdb.HGet(ctx, checksumsKey, path).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return sum, err
}
