package main

import (
	"context"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/codec"
	"github.com/15mga/kite/ecs"
	"github.com/15mga/kite/presence"
	"github.com/15mga/kite/render/stream"
	"github.com/15mga/kite/sid"
	"github.com/15mga/kite/util"
)

const (
	CBody  ecs.TComponent = "body"
	SWorld ecs.TSystem    = "world"
)

const (
	JobJoin  ecs.JobName = "join"
	JobMove  ecs.JobName = "move"
	JobLeave ecs.JobName = "leave"
)

const HeadPeer = "peer"

const (
	OpJoin   = "join"
	OpBeat   = "beat"
	OpMove   = "move"
	OpLeave  = "leave"
	OpJoined = "joined"
	OpError  = "error"
)

// clientMsg 客户端上行的 json 消息
type clientMsg struct {
	Op   string  `json:"op"`
	Id   string  `json:"id"`
	Kind string  `json:"kind"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
}

type joinData struct {
	id    sid.Id
	kind  string
	agent kite.IAgent
}

type moveData struct {
	id   sid.Id
	x, y float32
}

type body struct {
	ecs.Component[sid.Id]
	kind string
	x, y float32
}

func newBody(kind string, x, y float32) *body {
	return &body{
		Component: ecs.NewComponent[sid.Id](CBody),
		kind:      kind,
		x:         x,
		y:         y,
	}
}

func newWorld(tracker *presence.Tracker[sid.Id], hub *stream.Hub) *world {
	return &world{
		System:  ecs.NewSystem[sid.Id](SWorld),
		tracker: tracker,
		hub:     hub,
	}
}

// world 处理联网玩家的进出与移动,网络协程只投递任务
type world struct {
	ecs.System[sid.Id]
	tracker *presence.Tracker[sid.Id]
	hub     *stream.Hub
	jobs    *ecs.Frame[sid.Id]
}

func (w *world) bindFrame(frame *ecs.Frame[sid.Id]) {
	w.jobs = frame
}

func (w *world) OnStart(frame *ecs.Frame[sid.Id]) {
	w.System.OnStart(frame)
	w.BindJob(JobJoin, w.onJoin)
	w.BindJob(JobMove, w.onMove)
	w.BindJob(JobLeave, w.onLeave)
	w.Scene().BindAfterDisposeEntity(func(e *ecs.Entity[sid.Id]) {
		w.tracker.Leave(e.Id())
	})
}

func (w *world) OnUpdate() {
	w.DoJob(JobJoin)
	w.DoJob(JobMove)
	w.DoJob(JobLeave)
}

func (w *world) onJoin(params []any) {
	data := params[0].(*joinData)
	peer := w.tracker.Join(data.id, data.agent)
	scene := w.Scene()
	if _, ok := scene.GetEntity(data.id); ok {
		kite.Debug("peer reconnected", util.M{
			"id": data.id.String(),
		})
		return
	}
	x, y := spawnPos(data.id)
	e := ecs.NewEntity[sid.Id](data.id)
	e.AddComponents(peer, newBody(data.kind, x, y))
	if err := scene.AddEntity(e); err != nil {
		kite.Warn(err)
		return
	}
	kite.Info("peer joined", util.M{
		"id":    data.id.String(),
		"addr":  data.agent.Addr(),
		"peers": scene.EntityCount(),
	})
}

func (w *world) onMove(params []any) {
	data := params[0].(*moveData)
	e, ok := w.Scene().GetEntity(data.id)
	if !ok {
		return
	}
	b, ok := ecs.GetComponentAs[sid.Id, *body](e, CBody)
	if !ok {
		return
	}
	b.x, b.y = data.x, data.y
}

func (w *world) onLeave(params []any) {
	id := params[0].(sid.Id)
	if err := w.Scene().DelEntity(id); err != nil {
		// 没有实体时也要释放独占
		w.tracker.Leave(id)
		kite.Debug("leave", util.M{
			"id":    id.String(),
			"error": err.Error(),
		})
	}
}

func spawnPos(id sid.Id) (float32, float32) {
	n := id.Int64()
	if n < 0 {
		n = -n
	}
	return float32(n % 61), float32(n / 61 % 19)
}

// Receive 在连接协程调用
func (w *world) Receive(agent kite.IAgent, bytes []byte) {
	m, err := util.JsonUnmarshalM(bytes)
	if err != nil {
		w.reply(agent, OpError, util.M{"error": err.Error()})
		return
	}
	msg, err := codec.DecodeM[clientMsg](m)
	if err != nil {
		w.reply(agent, OpError, util.M{"error": err.Error()})
		return
	}
	switch msg.Op {
	case OpJoin:
		w.join(agent, msg)
	case OpBeat:
		id, ok := agentId(agent)
		if !ok {
			return
		}
		if err := w.tracker.Beat(id); err != nil {
			kite.Warn(err)
		}
	case OpMove:
		id, ok := agentId(agent)
		if !ok {
			return
		}
		w.jobs.PushJob(JobMove, &moveData{
			id: id,
			x:  msg.X,
			y:  msg.Y,
		})
	case OpLeave:
		id, ok := agentId(agent)
		if !ok {
			return
		}
		w.hub.Detach(agent.Id())
		w.jobs.PushJob(JobLeave, id)
	default:
		w.reply(agent, OpError, util.M{"error": "unknown op " + msg.Op})
	}
}

func (w *world) join(agent kite.IAgent, msg clientMsg) {
	// 带 id 视为断线重连
	id := sid.NewId()
	if msg.Id != "" {
		parsed, err := sid.ParseId(msg.Id)
		if err != nil {
			w.reply(agent, OpError, util.M{"error": err.Error()})
			return
		}
		id = parsed
	}
	// 共享存储下同一 id 只能由一个节点持有,leave 或被回收时释放
	ctx, cancel := context.WithTimeout(util.Ctx(), time.Second*3)
	err := w.tracker.Claim(ctx, id)
	cancel()
	if err != nil {
		w.reply(agent, OpError, util.M{"error": err.Error()})
		return
	}
	agent.SetId(id.String())
	agent.SetHead(HeadPeer, id)
	w.hub.Attach(agent)
	w.jobs.PushJob(JobJoin, &joinData{
		id:    id,
		kind:  msg.Kind,
		agent: agent,
	})
	w.reply(agent, OpJoined, util.M{"id": id.String()})
}

func (w *world) reply(agent kite.IAgent, op string, params util.M) {
	params["op"] = op
	bytes, err := util.JsonMarshal(params)
	if err != nil {
		kite.Warn(err)
		return
	}
	if err := agent.Send(bytes); err != nil {
		kite.Debug("reply", util.M{
			"agent": agent.Id(),
			"error": err.Error(),
		})
	}
}

// agentId 未 join 的连接没有 peer id
func agentId(agent kite.IAgent) (sid.Id, bool) {
	v, ok := agent.GetHead(HeadPeer)
	if !ok {
		return 0, false
	}
	id, ok := v.(sid.Id)
	return id, ok
}

// toEntity 流式后端的绘制数据,附带在线状态
func toEntity(c ecs.IComponent[sid.Id]) (codec.Entity, bool) {
	b, ok := c.(*body)
	if !ok {
		return codec.Entity{}, false
	}
	e := b.Entity()
	alive, _ := e.Scene().EntityAlive(e, presence.TPeer)
	return codec.Entity{
		Id:    e.Id().String(),
		Kind:  b.kind,
		X:     b.x,
		Y:     b.y,
		Alive: alive,
	}, true
}

func toId(c ecs.IComponent[sid.Id]) (string, bool) {
	return c.Entity().Id().String(), true
}
