package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"inventory-service/internal/config"
	"inventory-service/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxClaimsKey = "auth_claims" // model.AuthClaims

	bearerPrefix = "Bearer "
)

// 理由は呼び出し側に出さない（ヘッダ無し・署名違い・期限切れは全部これ）
var ErrUnauthorized = errors.New("unauthorized")

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// VerifyBearer はAuthorizationヘッダの値を検証してclaimsを返す。
// I/Oも共有状態も持たない純粋関数。失敗は全部ErrUnauthorizedにまとめ、原因はwrapして残す。
func VerifyBearer(header string, secret []byte, now time.Time) (model.AuthClaims, error) {
	if len(secret) == 0 {
		return model.AuthClaims{}, ErrUnauthorized
	}

	//Bearer形式か確認してtokenを抜く
	rawToken, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || rawToken == "" {
		return model.AuthClaims{}, ErrUnauthorized
	}

	//HS256固定、exp必須
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims tokenClaims
	token, err := parser.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return model.AuthClaims{}, errors.Join(ErrUnauthorized, err)
	}
	if token == nil || !token.Valid {
		return model.AuthClaims{}, ErrUnauthorized
	}

	//subとroleは空文字も拒否。nbfは入っていればjwt側で検証される
	if claims.Subject == "" || claims.Role == "" {
		return model.AuthClaims{}, errors.Join(ErrUnauthorized, errors.New("missing sub or role"))
	}

	return model.AuthClaims{
		Subject:   claims.Subject,
		Role:      model.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// bearerAuth用のJWT検証ミドルウェア。通らなければ次のハンドラは呼ばない（DBにも触らない）。
func AuthJWT(cfg config.Config, logger *slog.Logger) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)
	if logger == nil {
		logger = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			claims, err := VerifyBearer(req.Header.Get(echo.HeaderAuthorization), secret, time.Now())
			if err != nil {
				logger.DebugContext(req.Context(), "auth rejected",
					"method", req.Method,
					"path", req.URL.Path,
					"error", err,
				)
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxClaimsKey, claims)

			return next(c)
		}
	}
}

// ClaimsFromContext はAuthJWTが入れたclaimsを取り出す
func ClaimsFromContext(c echo.Context) (model.AuthClaims, bool) {
	claims, ok := c.Get(CtxClaimsKey).(model.AuthClaims)
	return claims, ok
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
