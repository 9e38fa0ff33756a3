package service

import (
	"context"

	"github.com/google/uuid"
)

// IdempotencyStore защищает чекаут от двойной отправки: клиентский
// Idempotency-Key резервируется до начала транзакции, поэтому два
// одновременных запроса с одним ключом не создадут два заказа.
type IdempotencyStore interface {
	// Reserve атомарно занимает ключ. Возвращает id уже созданного
	// заказа (повтор), либо reserved=true (ключ наш), либо ни то ни
	// другое — ключ занят параллельным запросом, который ещё не
	// завершился.
	Reserve(ctx context.Context, userID uuid.UUID, key string) (existing *uuid.UUID, reserved bool, err error)
	// Complete связывает зарезервированный ключ с созданным заказом.
	Complete(ctx context.Context, userID uuid.UUID, key string, orderID uuid.UUID) error
	// Release освобождает резерв после неудавшегося чекаута.
	Release(ctx context.Context, userID uuid.UUID, key string) error
}
