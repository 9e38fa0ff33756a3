package middleware

import (
	"errors"
	"net/http"
	"strings"

	"minimall-backend/internal/models"
	"minimall-backend/internal/service"
	"minimall-backend/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type accessClaims struct {
	Sub          string `json:"sub"`
	Role         string `json:"role"`
	IsSeller     bool   `json:"is_seller"`
	SellerStatus string `json:"seller_status"`
	jwt.RegisteredClaims
}

// AuthRequired валидирует Bearer access-токен и кладёт Principal
// в контекст запроса. Дальше по нему живёт весь сервисный слой.
func AuthRequired(accessSecret []byte, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing Authorization header"))
			return
		}
		token, ok := ExtractBearerToken(authz)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
			return
		}

		principal, err := parseAccessToken(token, accessSecret)
		if err != nil {
			log.Warn("невалидный access-токен", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		ctx := service.WithPrincipal(c.Request.Context(), *principal)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func parseAccessToken(token string, secret []byte) (*service.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	cc, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	uid, err := uuid.Parse(cc.Sub)
	if err != nil {
		return nil, err
	}
	return &service.Principal{
		ID:           uid,
		Role:         service.Role(cc.Role),
		IsSeller:     cc.IsSeller,
		SellerStatus: models.SellerStatus(cc.SellerStatus),
	}, nil
}

// ExtractBearerToken извлекает токен из заголовка Authorization,
// устойчиво к лишним кавычкам и хвостам после запятой.
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.TrimSpace(parts[1])
	t = strings.Trim(t, " \"'")
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.Trim(t, " \"'")
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.Trim(t, " \"'")
	return t, true
}
