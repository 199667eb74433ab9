package log

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/15mga/kite/worker"
	"github.com/panjf2000/ants/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mgoLog = "log"
)

type (
	mgoOption struct {
		logLvl     kite.TLevel
		db         string
		ttl        int32
		batch      int
		flushDur   time.Duration
		dbOpts     *options.DatabaseOptions
		clientOpts *options.ClientOptions
		logOpt     *options.CreateCollectionOptions
		logIdx     []mongo.IndexModel
	}
	MgoOption func(opt *mgoOption)
)

func MgoLogLvl(levels ...string) MgoOption {
	return func(opt *mgoOption) {
		opt.logLvl = kite.StrLvlToMask(levels...)
	}
}

func MgoDb(db string) MgoOption {
	return func(opt *mgoOption) {
		opt.db = db
	}
}

// MgoTtl 日志保留秒数
func MgoTtl(ttl int32) MgoOption {
	return func(opt *mgoOption) {
		opt.ttl = ttl
	}
}

func MgoBatch(batch int) MgoOption {
	return func(opt *mgoOption) {
		opt.batch = batch
	}
}

func MgoFlushDur(dur time.Duration) MgoOption {
	return func(opt *mgoOption) {
		opt.flushDur = dur
	}
}

func MgoClientOptions(opts *options.ClientOptions) MgoOption {
	return func(opt *mgoOption) {
		opt.clientOpts = opts
	}
}

func MgoDbOptions(opts *options.DatabaseOptions) MgoOption {
	return func(opt *mgoOption) {
		opt.dbOpts = opts
	}
}

func MgoLogOpt(option *options.CreateCollectionOptions) MgoOption {
	return func(opt *mgoOption) {
		opt.logOpt = option
	}
}

func MgoLogIdx(index ...mongo.IndexModel) MgoOption {
	return func(opt *mgoOption) {
		opt.logIdx = index
	}
}

func NewMgo(opts ...MgoOption) (*mgoLogger, *util.Err) {
	opt := &mgoOption{
		logLvl:   kite.LvlToMask(kite.ProdLevels...),
		db:       "log",
		ttl:      3600 * 24 * 7,
		batch:    32,
		flushDur: time.Second * 5,
	}
	for _, o := range opts {
		o(opt)
	}
	if opt.clientOpts == nil {
		opt.clientOpts = options.Client().ApplyURI("mongodb://localhost:27017")
	}
	pool, err := worker.NewPool(4)
	if err != nil {
		return nil, err
	}
	l := &mgoLogger{
		option: opt,
		pool:   pool,
		buffer: make([]any, 0, opt.batch),
		stopCh: make(chan struct{}),
	}
	err = l.conn()
	if err != nil {
		return nil, err
	}
	err = l.initColl()
	if err != nil {
		return nil, err
	}

	kite.BeforeExitFn("mgo log", l.Close)
	go l.loop()
	return l, nil
}

type mgoLogger struct {
	option *mgoOption
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
	pool   *ants.Pool
	mtx    sync.Mutex
	buffer []any
	once   sync.Once
	stopCh chan struct{}
}

func (l *mgoLogger) conn() *util.Err {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	client, e := mongo.Connect(ctx, l.option.clientOpts)
	if e != nil {
		return util.WrapErr(util.EcConnectErr, e)
	}
	e = client.Ping(ctx, readpref.Primary())
	if e != nil {
		return util.WrapErr(util.EcConnectErr, e)
	}
	l.client = client
	l.db = client.Database(l.option.db, l.option.dbOpts)
	return nil
}

func (l *mgoLogger) initColl() *util.Err {
	ctx := context.TODO()
	names, e := l.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: mgoLog}})
	if e != nil {
		return util.WrapErr(util.EcDbErr, e)
	}
	if len(names) == 0 {
		e = l.db.CreateCollection(ctx, mgoLog, l.option.logOpt)
		if e != nil {
			return util.WrapErr(util.EcDbErr, e)
		}
	}
	l.coll = l.db.Collection(mgoLog)
	_, e = l.coll.Indexes().CreateMany(ctx,
		append(l.option.logIdx,
			mongo.IndexModel{
				Keys:    bson.D{{Key: "ts", Value: -1}},
				Options: options.Index().SetExpireAfterSeconds(l.option.ttl),
			},
			mongo.IndexModel{
				Keys: bson.D{{Key: "lvl", Value: 1}},
			}))
	if e != nil {
		return util.WrapErr(util.EcDbErr, e)
	}
	return nil
}

func (l *mgoLogger) loop() {
	ticker := time.NewTicker(l.option.flushDur)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.flush(false)
		case <-l.stopCh:
			return
		}
	}
}

func (l *mgoLogger) Log(level kite.TLevel, msg, caller string, stack []byte, params util.M) {
	if !util.TestMask(level, l.option.logLvl) {
		return
	}
	l.mtx.Lock()
	l.buffer = append(l.buffer, logDoc{
		Timestamp: time.Now(),
		Level:     kite.LevelToStr(level),
		Message:   msg,
		Stack:     string(stack),
		Caller:    caller,
		Params:    params,
	})
	full := len(l.buffer) >= l.option.batch
	l.mtx.Unlock()
	if full {
		l.flush(false)
	}
}

// flush block 为 true 时在当前协程写入
func (l *mgoLogger) flush(block bool) {
	l.mtx.Lock()
	if len(l.buffer) == 0 {
		l.mtx.Unlock()
		return
	}
	docs := l.buffer
	l.buffer = make([]any, 0, l.option.batch)
	l.mtx.Unlock()
	if block {
		l.insert(docs)
		return
	}
	e := l.pool.Submit(func() {
		l.insert(docs)
	})
	if e != nil {
		l.insert(docs)
	}
}

func (l *mgoLogger) insert(docs []any) {
	_, e := l.coll.InsertMany(context.TODO(), docs)
	if e != nil {
		_, _ = os.Stderr.WriteString(e.Error() + "\n")
	}
}

// Close 写入剩余日志并断开
func (l *mgoLogger) Close() {
	l.once.Do(func() {
		close(l.stopCh)
		l.flush(true)
		l.pool.Release()
		_ = l.client.Disconnect(context.TODO())
	})
}

type logDoc struct {
	Timestamp time.Time `bson:"ts"`
	Level     string    `bson:"lvl"`
	Message   string    `bson:"msg"`
	Stack     string    `bson:"stk,omitempty"`
	Caller    string    `bson:"cl"`
	Params    util.M    `bson:"p,omitempty"`
}
