package presence

import (
	"context"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/ecs"
	"github.com/15mga/kite/util"
	"github.com/15mga/kite/worker"
	cmap "github.com/orcaman/concurrent-map/v2"
)

type (
	trackerOption struct {
		timeout  time.Duration
		now      FnNow
		store    IStore
		queue    int
		storeDur time.Duration
	}
	TrackerOption func(o *trackerOption)
)

// TrackerTimeout 心跳超时
func TrackerTimeout(timeout time.Duration) TrackerOption {
	return func(o *trackerOption) {
		o.timeout = timeout
	}
}

func TrackerNow(now FnNow) TrackerOption {
	return func(o *trackerOption) {
		o.now = now
	}
}

// TrackerStore 同步到共享存储,不设置则只在本节点
func TrackerStore(store IStore) TrackerOption {
	return func(o *trackerOption) {
		o.store = store
	}
}

// TrackerQueue 待写入共享存储的队列长度,满了丢弃并告警
func TrackerQueue(size int) TrackerOption {
	return func(o *trackerOption) {
		o.queue = size
	}
}

// TrackerStoreTimeout 单次存储操作超时
func TrackerStoreTimeout(dur time.Duration) TrackerOption {
	return func(o *trackerOption) {
		o.storeDur = dur
	}
}

func NewTracker[ID ecs.Identify](opts ...TrackerOption) *Tracker[ID] {
	o := &trackerOption{
		timeout:  time.Second * 10,
		now:      defNow,
		queue:    1024,
		storeDur: time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	ctx, ccl := context.WithCancel(util.Ctx())
	t := &Tracker[ID]{
		option: o,
		peers:  cmap.NewStringer[ID, *Peer[ID]](),
		claims: cmap.NewStringer[ID, IClaim](),
		ctx:    ctx,
		ccl:    ccl,
	}
	if o.store != nil {
		t.ops = make(chan storeOp, o.queue)
		worker.Go(t.loop)
	}
	return t
}

type storeOpKind uint8

const (
	opBeat storeOpKind = iota
	opDrop
)

type storeOp struct {
	kind  storeOpKind
	id    string
	claim IClaim
}

// Tracker 协程安全,网络协程与 frame 协程可同时使用;共享存储按调用顺序异步写入
type Tracker[ID ecs.Identify] struct {
	option *trackerOption
	peers  cmap.ConcurrentMap[ID, *Peer[ID]]
	claims cmap.ConcurrentMap[ID, IClaim]
	ops    chan storeOp
	ctx    context.Context
	ccl    context.CancelFunc
}

// Claim 本节点独占 id,已持有时直接返回;没有共享存储时总是成功。会阻塞,不要在 frame 协程调用
func (t *Tracker[ID]) Claim(ctx context.Context, id ID) *util.Err {
	store := t.option.store
	if store == nil || t.claims.Has(id) {
		return nil
	}
	claim, err := store.Claim(ctx, id.String())
	if err != nil {
		return err
	}
	if !t.claims.SetIfAbsent(id, claim) {
		t.push(storeOp{kind: opDrop, id: "", claim: claim})
	}
	return nil
}

func (t *Tracker[ID]) Claimed(id ID) bool {
	return t.claims.Has(id)
}

// Join 创建或重连 peer,只有当前连接断开时才 Disconnect
func (t *Tracker[ID]) Join(id ID, agent kite.IAgent) *Peer[ID] {
	peer := t.peers.Upsert(id, nil, func(exist bool, old, _ *Peer[ID]) *Peer[ID] {
		if exist {
			return old
		}
		return NewPeer[ID](t.option.timeout, t.option.now)
	})
	peer.ConnectAgent(agent)
	t.beat(id)
	if agent != nil {
		agent.BindDisconnected(func(_ kite.IAgent, _ *util.Err) {
			if !peer.DisconnectAgent(agent) {
				return
			}
			kite.Debug("peer disconnected", util.M{
				"id":    id.String(),
				"agent": agent.Id(),
			})
		})
	}
	return peer
}

// Beat 未加入返回 EcNotExist,同时续期独占
func (t *Tracker[ID]) Beat(id ID) *util.Err {
	peer, ok := t.peers.Get(id)
	if !ok {
		return util.NewErr(util.EcNotExist, util.M{
			"id": id.String(),
		})
	}
	peer.Beat()
	t.beat(id)
	return nil
}

// Leave 移除 peer 并释放独占
func (t *Tracker[ID]) Leave(id ID) bool {
	claim, claimed := t.claims.Pop(id)
	peer, ok := t.peers.Pop(id)
	if ok {
		peer.Disconnect()
	}
	if ok || claimed {
		t.push(storeOp{kind: opDrop, id: id.String(), claim: claim})
	}
	return ok
}

func (t *Tracker[ID]) Get(id ID) (*Peer[ID], bool) {
	return t.peers.Get(id)
}

func (t *Tracker[ID]) Alive(id ID) bool {
	peer, ok := t.peers.Get(id)
	return ok && peer.IsAlive()
}

// AliveRemote 本节点没有时查询共享存储
func (t *Tracker[ID]) AliveRemote(ctx context.Context, id ID) (bool, *util.Err) {
	if t.Alive(id) {
		return true, nil
	}
	if t.option.store == nil {
		return false, nil
	}
	return t.option.store.Alive(ctx, id.String())
}

func (t *Tracker[ID]) Count() int {
	return t.peers.Count()
}

func (t *Tracker[ID]) Store() IStore {
	return t.option.store
}

// Close 停止写入共享存储,未写入的丢弃,独占随过期释放
func (t *Tracker[ID]) Close() {
	t.ccl()
}

func (t *Tracker[ID]) beat(id ID) {
	if t.option.store == nil {
		return
	}
	claim, _ := t.claims.Get(id)
	t.push(storeOp{kind: opBeat, id: id.String(), claim: claim})
}

func (t *Tracker[ID]) push(op storeOp) {
	if t.ops == nil {
		return
	}
	select {
	case t.ops <- op:
	default:
		kite.Warn2(util.EcBusy, util.M{
			"id":   op.id,
			"op":   op.kind,
			"left": len(t.ops),
		})
	}
}

func (t *Tracker[ID]) loop(_ []any) {
	for {
		select {
		case <-t.ctx.Done():
			return
		case op := <-t.ops:
			t.apply(op)
		}
	}
}

func (t *Tracker[ID]) apply(op storeOp) {
	ctx, cancel := context.WithTimeout(t.ctx, t.option.storeDur)
	defer cancel()
	store := t.option.store
	var err *util.Err
	switch op.kind {
	case opBeat:
		err = store.Beat(ctx, op.id, t.option.timeout)
		if err == nil && op.claim != nil {
			err = op.claim.Extend(ctx)
		}
	case opDrop:
		if op.id != "" {
			err = store.Drop(ctx, op.id)
		}
		if op.claim != nil {
			if e := op.claim.Release(ctx); e != nil && err == nil {
				err = e
			}
		}
	}
	if err != nil {
		err.AddParam("id", op.id)
		kite.Warn(err)
	}
}
