package sessionstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/session"
)

const redisKeyPrefix = "session:"

// redisStore persists sessions as JSON values with a server-side TTL, so
// expiry is enforced by Redis as well as by the session service's passive check.
type redisStore struct {
	client *redis.Client
}

var _ session.Repository = (*redisStore)(nil)

// NewRedisClient connects to Redis using the app config. The connection is
// verified with a short ping so a misconfigured address fails at startup,
// not on the first login.
func NewRedisClient(conf *core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) session.Repository {
	return &redisStore{client: client}
}

func (st *redisStore) SaveSession(s session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshalling session")
	}
	ttl := s.TTL(time.Now())
	if ttl <= 0 {
		return nil // already expired; nothing worth storing
	}
	return st.client.Set(context.Background(), redisKeyPrefix+s.ID, data, ttl).Err()
}

func (st *redisStore) GetSession(id string) (session.Session, error) {
	data, err := st.client.Get(context.Background(), redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrSessionInvalid
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}
	var s session.Session
	if err = json.Unmarshal(data, &s); err != nil {
		return session.Session{}, errors.Wrap(err, "unmarshalling session")
	}
	return s, nil
}

func (st *redisStore) DeleteSession(id string) error {
	return st.client.Del(context.Background(), redisKeyPrefix+id).Err()
}
