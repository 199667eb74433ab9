package presence

import (
	"context"
	"time"

	"github.com/15mga/kite/util"
	"github.com/15mga/kite/util/rds"
	"github.com/go-redsync/redsync/v4"
	"github.com/gomodule/redigo/redis"
)

type (
	rdsOption struct {
		prefix   string
		claimTtl time.Duration
	}
	RdsOption func(o *rdsOption)
)

func RdsPrefix(prefix string) RdsOption {
	return func(o *rdsOption) {
		o.prefix = prefix
	}
}

// RdsClaimTtl 独占锁过期时间,持有节点宕机后自动释放
func RdsClaimTtl(ttl time.Duration) RdsOption {
	return func(o *rdsOption) {
		o.claimTtl = ttl
	}
}

func NewRdsStore(client *rds.Redis, opts ...RdsOption) *RdsStore {
	o := &rdsOption{
		prefix:   "kite:presence:",
		claimTtl: time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &RdsStore{
		option: o,
		client: client,
	}
}

// RdsStore 心跳用带过期的 key,key 存在即在线
type RdsStore struct {
	option *rdsOption
	client *rds.Redis
}

var _ IStore = (*RdsStore)(nil)

func (s *RdsStore) beatKey(id string) string {
	return s.option.prefix + "beat:" + id
}

func (s *RdsStore) claimKey(id string) string {
	return s.option.prefix + "claim:" + id
}

func (s *RdsStore) Beat(ctx context.Context, id string, ttl time.Duration) *util.Err {
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return s.client.FnSpawnConn(ctx, func(conn redis.Conn) *util.Err {
		_, e := redis.DoContext(conn, ctx, rds.SETEX, s.beatKey(id), secs, time.Now().UnixMilli())
		if e != nil {
			return util.WrapErr(util.EcRedisErr, e)
		}
		return nil
	})
}

func (s *RdsStore) Alive(ctx context.Context, id string) (alive bool, err *util.Err) {
	err = s.client.FnSpawnConn(ctx, func(conn redis.Conn) *util.Err {
		ok, e := redis.Bool(redis.DoContext(conn, ctx, rds.EXISTS, s.beatKey(id)))
		if e != nil {
			return util.WrapErr(util.EcRedisErr, e)
		}
		alive = ok
		return nil
	})
	return
}

func (s *RdsStore) Drop(ctx context.Context, id string) *util.Err {
	return s.client.FnSpawnConn(ctx, func(conn redis.Conn) *util.Err {
		_, e := redis.DoContext(conn, ctx, rds.DEL, s.beatKey(id))
		if e != nil {
			return util.WrapErr(util.EcRedisErr, e)
		}
		return nil
	})
}

func (s *RdsStore) Claim(ctx context.Context, id string) (IClaim, *util.Err) {
	m := s.client.NewMutex(s.claimKey(id),
		redsync.WithExpiry(s.option.claimTtl),
		redsync.WithTries(1))
	e := m.LockContext(ctx)
	if e != nil {
		// 已被占用或 redis 不可用都视为获取失败
		return nil, util.NewErr(util.EcPresenceErr, util.M{
			"id":    id,
			"error": e.Error(),
		})
	}
	return &rdsClaim{
		id:    id,
		mutex: m,
	}, nil
}

type rdsClaim struct {
	id    string
	mutex *redsync.Mutex
}

// Extend 重置为 RdsClaimTtl,锁已过期或被他人持有时失败
func (c *rdsClaim) Extend(ctx context.Context) *util.Err {
	ok, e := c.mutex.ExtendContext(ctx)
	if e != nil || !ok {
		err := util.NewErr(util.EcPresenceErr, util.M{
			"id":    c.id,
			"error": "extend claim failed",
		})
		if e != nil {
			err.AddParam("error", e.Error())
		}
		return err
	}
	return nil
}

func (c *rdsClaim) Release(ctx context.Context) *util.Err {
	_, e := c.mutex.UnlockContext(ctx)
	if e != nil {
		return util.WrapErr(util.EcRedisErr, e)
	}
	return nil
}
