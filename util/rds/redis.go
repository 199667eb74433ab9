package rds

import (
	"context"
	"time"

	"github.com/15mga/kite/util"
	"github.com/go-redsync/redsync/v4"
	rsredigo "github.com/go-redsync/redsync/v4/redis/redigo"
	"github.com/gomodule/redigo/redis"
)

const (
	DEL    = "DEL"    // DEL 用于在key存在时删除key
	EXISTS = "EXISTS" // EXISTS key是否存在
	EXPIRE = "EXPIRE" // EXPIRE 设置秒为单位的过期时间
	TTL    = "TTL"    // TTL 返回key以秒为单位的过期时间
	SET    = "SET"    // SET 设置健值
	GET    = "GET"    // GET 获取指定key的值
	SETEX  = "SETEX"  // SETEX 设置值和秒为单位的过期时间
	PING   = "PING"
)

type (
	ConnToErr        func(redis.Conn) *util.Err
	redisRedisOption struct {
		addr        string
		db          int
		password    string
		maxIdle     int
		idleTimeout time.Duration
		connPool    *redis.Pool
	}
	RedisOption func(*redisRedisOption)
)

func Addr(addr string) RedisOption {
	return func(opt *redisRedisOption) {
		opt.addr = addr
	}
}

func Db(db int) RedisOption {
	return func(opt *redisRedisOption) {
		opt.db = db
	}
}

func Password(password string) RedisOption {
	return func(opt *redisRedisOption) {
		opt.password = password
	}
}

func MaxIdle(n int) RedisOption {
	return func(opt *redisRedisOption) {
		opt.maxIdle = n
	}
}

// ConnPool 使用外部连接池,忽略地址相关选项
func ConnPool(pool *redis.Pool) RedisOption {
	return func(opt *redisRedisOption) {
		opt.connPool = pool
	}
}

func NewRedis(opts ...RedisOption) *Redis {
	opt := &redisRedisOption{
		addr:        "127.0.0.1:6379",
		maxIdle:     8,
		idleTimeout: time.Minute * 4,
	}
	for _, o := range opts {
		o(opt)
	}
	if opt.connPool == nil {
		addr, db, password := opt.addr, opt.db, opt.password
		opt.connPool = &redis.Pool{
			MaxIdle:     opt.maxIdle,
			IdleTimeout: opt.idleTimeout,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", addr,
					redis.DialDatabase(db),
					redis.DialPassword(password),
					redis.DialConnectTimeout(time.Second*3))
			},
		}
	}
	return &Redis{
		redisRedisOption: opt,
		locker:           redsync.New(rsredigo.NewPool(opt.connPool)),
	}
}

type Redis struct {
	redisRedisOption *redisRedisOption
	locker           *redsync.Redsync
}

func (r *Redis) SpawnConn(ctx context.Context) (redis.Conn, *util.Err) {
	conn, e := r.redisRedisOption.connPool.GetContext(ctx)
	if e != nil {
		return nil, util.WrapErr(util.EcRedisErr, e)
	}
	return conn, nil
}

// FnSpawnConn 取连接执行后归还
func (r *Redis) FnSpawnConn(ctx context.Context, fn ConnToErr) *util.Err {
	conn, err := r.SpawnConn(ctx)
	if err != nil {
		return err
	}
	err = fn(conn)
	_ = conn.Close()
	return err
}

func (r *Redis) Ping(ctx context.Context) *util.Err {
	return r.FnSpawnConn(ctx, func(conn redis.Conn) *util.Err {
		_, e := redis.DoContext(conn, ctx, PING)
		if e != nil {
			return util.WrapErr(util.EcRedisErr, e)
		}
		return nil
	})
}

func (r *Redis) NewMutex(key string, opts ...redsync.Option) *redsync.Mutex {
	return r.locker.NewMutex(key, opts...)
}

func (r *Redis) Lock(ctx context.Context, key string, fn func(), opts ...redsync.Option) *util.Err {
	if fn == nil {
		return nil
	}
	m := r.locker.NewMutex(key, opts...)
	e := m.LockContext(ctx)
	if e != nil {
		return util.WrapErr(util.EcRedisErr, e)
	}
	fn()
	_, e = m.UnlockContext(ctx)
	if e != nil {
		return util.WrapErr(util.EcRedisErr, e)
	}
	return nil
}

func (r *Redis) Close() *util.Err {
	e := r.redisRedisOption.connPool.Close()
	if e != nil {
		return util.WrapErr(util.EcRedisErr, e)
	}
	return nil
}
