package secrets

import (
	"context"

	"go.uber.org/zap"
)

type Store interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// APIKeySource - без SecretName используется статический Key
type APIKeySource struct {
	Key        string
	SecretName string
}

// ResolveAPIKey - ошибка стора не фатальна: логируем и отдаем статический ключ
func ResolveAPIKey(ctx context.Context, src APIKeySource, store Store, logger *zap.Logger) string {
	if src.SecretName == "" || store == nil {
		return src.Key
	}

	value, err := store.GetSecret(ctx, src.SecretName)
	if err != nil {
		logger.Error("Failed to retrieve Guardian API key",
			zap.String("secret_name", src.SecretName),
			zap.Error(err),
		)
		return src.Key
	}
	return value
}
