package tags

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tagsKey = "tags"

// RedisStore is a Source backed by Redis sets: tag:<name> holds account IDs,
// account:<id>:tags the tags of one account and tags every tag in use.
type RedisStore struct {
	client redis.UniversalClient
	logger *zap.Logger
}

var _ Source = (*RedisStore)(nil)

// NewRedisClient connects to a single Redis node and pings it.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisStore wraps an open client. A nil logger discards log output.
func NewRedisStore(client redis.UniversalClient, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}
}

func tagKey(tag string) string {
	return "tag:" + tag
}

func accountKey(id int64) string {
	return "account:" + strconv.FormatInt(id, 10) + ":tags"
}

func (s *RedisStore) TaggedWith(ctx context.Context, tag string) ([]int64, error) {
	members, err := s.client.SMembers(ctx, tagKey(tag)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", tagKey(tag), err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid account id %q in %s: %w", m, tagKey(tag), err)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RedisStore) TagsInUse(ctx context.Context) ([]string, error) {
	return s.sortedMembers(ctx, tagsKey)
}

func (s *RedisStore) TagsOf(ctx context.Context, accountID int64) ([]string, error) {
	return s.sortedMembers(ctx, accountKey(accountID))
}

func (s *RedisStore) Tag(ctx context.Context, accountID int64, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	if err := validTags(tags); err != nil {
		return err
	}

	member := strconv.FormatInt(accountID, 10)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, tag := range tags {
			pipe.SAdd(ctx, tagKey(tag), member)
			pipe.SAdd(ctx, accountKey(accountID), tag)
			pipe.SAdd(ctx, tagsKey, tag)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tagging account %d: %w", accountID, err)
	}
	s.logger.Debug("tagged account", zap.Int64("account_id", accountID), zap.Strings("tags", tags))
	return nil
}

func (s *RedisStore) Untag(ctx context.Context, accountID int64, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}

	member := strconv.FormatInt(accountID, 10)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, tag := range tags {
			pipe.SRem(ctx, tagKey(tag), member)
			pipe.SRem(ctx, accountKey(accountID), tag)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("untagging account %d: %w", accountID, err)
	}

	// Drop tags nobody carries any more from the tags set.
	for _, tag := range tags {
		n, err := s.client.SCard(ctx, tagKey(tag)).Result()
		if err != nil {
			return fmt.Errorf("counting %s: %w", tagKey(tag), err)
		}
		if n == 0 {
			if err := s.client.SRem(ctx, tagsKey, tag).Err(); err != nil {
				return fmt.Errorf("removing %s from %s: %w", tag, tagsKey, err)
			}
		}
	}
	s.logger.Debug("untagged account", zap.Int64("account_id", accountID), zap.Strings("tags", tags))
	return nil
}

func (s *RedisStore) sortedMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	slices.Sort(members)
	return members, nil
}
