package stream

import (
	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	cmap "github.com/orcaman/concurrent-map/v2"
)

func NewHub() *Hub {
	return &Hub{
		agents: cmap.New[kite.IAgent](),
	}
}

// Hub 订阅帧的连接,协程安全
type Hub struct {
	agents cmap.ConcurrentMap[string, kite.IAgent]
}

// Attach 连接断开时自动移除,同 id 覆盖旧连接
func (h *Hub) Attach(agent kite.IAgent) {
	h.agents.Set(agent.Id(), agent)
	agent.BindDisconnected(func(a kite.IAgent, _ *util.Err) {
		h.agents.RemoveCb(a.Id(), func(key string, v kite.IAgent, exists bool) bool {
			return exists && v == a
		})
	})
}

func (h *Hub) Detach(id string) {
	h.agents.Remove(id)
}

func (h *Hub) Has(id string) bool {
	return h.agents.Has(id)
}

func (h *Hub) Count() int {
	return h.agents.Count()
}

// Broadcast 发送失败的连接会被移除
func (h *Hub) Broadcast(bytes []byte) (sent, dropped int) {
	for id, agent := range h.agents.Items() {
		err := agent.Send(bytes)
		if err != nil {
			h.agents.Remove(id)
			kite.Debug("detach agent", util.M{
				"agent": id,
				"error": err.String(),
			})
			dropped++
			continue
		}
		sent++
	}
	return
}
