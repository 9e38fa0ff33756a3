package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisClient struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisClient{
		client: rdb,
		log:    log,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// IdempotencyStore хранит результат чекаута по паре (пользователь, ключ).
// Ключ резервируется через SETNX до транзакции: параллельный запрос
// с тем же ключом видит либо резерв, либо уже созданный заказ.
type IdempotencyStore struct {
	rdb *RedisClient
	ttl time.Duration
}

// pendingMarker держит ключ, пока чекаут-транзакция не завершилась.
const pendingMarker = "pending"

func NewIdempotencyStore(rdb *RedisClient, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("idempotency:checkout:%s:%s", userID, key)
}

func (s *IdempotencyStore) Reserve(ctx context.Context, userID uuid.UUID, key string) (*uuid.UUID, bool, error) {
	k := idempotencyKey(userID, key)

	ok, err := s.rdb.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}

	// ключ занят: либо заказ уже создан, либо сосед ещё в транзакции
	val, err := s.rdb.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// резерв истёк между SETNX и GET — крайне редкий случай,
		// трактуем как занятый ключ
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if val == pendingMarker {
		return nil, false, nil
	}
	orderID, err := uuid.Parse(val)
	if err != nil {
		s.rdb.log.Warn("некорректный order_id в идемпотентном ключе", zap.String("value", val))
		return nil, false, nil
	}
	return &orderID, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, userID uuid.UUID, key string, orderID uuid.UUID) error {
	return s.rdb.client.Set(ctx, idempotencyKey(userID, key), orderID.String(), s.ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, userID uuid.UUID, key string) error {
	return s.rdb.client.Del(ctx, idempotencyKey(userID, key)).Err()
}
