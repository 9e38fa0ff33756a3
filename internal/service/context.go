package service

import (
	"context"

	"minimall-backend/internal/models"

	"github.com/google/uuid"
)

type ctxKey string

const ctxPrincipalKey ctxKey = "principal"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Principal — аутентифицированный субъект, которого кладёт в контекст
// auth-мидлварь. Сервисы никуда сами за ним не ходят.
type Principal struct {
	ID           uuid.UUID
	Role         Role
	IsSeller     bool
	SellerStatus models.SellerStatus
}

// SellerPrivileged: админ или активный/подтверждённый продавец.
func (p Principal) SellerPrivileged() bool {
	if p.Role == RoleAdmin {
		return true
	}
	return p.IsSeller &&
		(p.SellerStatus == models.SellerStatusActive || p.SellerStatus == models.SellerStatusApproved)
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	v, ok := ctx.Value(ctxPrincipalKey).(Principal)
	return v, ok
}

func requireAuth(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}
