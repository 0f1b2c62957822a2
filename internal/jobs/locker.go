package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Locker otorga el liderazgo de un job entre instancias. Solo la instancia
// que adquiere el lock ejecuta la pasada; las demás la saltan.
type Locker interface {
	// TryAcquire intenta tomar el lock con el TTL dado. Retorna false si
	// otra instancia lo tiene.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release libera el lock si esta instancia lo posee.
	Release(ctx context.Context, key string)
}

// RedisLocker implementa el lock de líder sobre Redis con SET NX.
// Cada instancia usa un token propio para no liberar locks ajenos.
type RedisLocker struct {
	client *redis.Client
	token  string
	log    zerolog.Logger
}

// NewRedisLocker construye el locker sobre un cliente Redis.
func NewRedisLocker(client *redis.Client, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{client: client, token: uuid.New().String(), log: log}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, l.token, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release borra el lock solo si el token coincide. La comparación y el
// borrado van en un script para que sean atómicos.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Release(ctx context.Context, key string) {
	if err := releaseScript.Run(ctx, l.client, []string{key}, l.token).Err(); err != nil && err != redis.Nil {
		l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock")
	}
}

// LocalLocker es el fallback sin Redis: asume instancia única y concede
// siempre. Los jobs ya son no reentrantes dentro del proceso.
type LocalLocker struct{}

func (LocalLocker) TryAcquire(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (LocalLocker) Release(context.Context, string) {}
