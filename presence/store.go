package presence

import (
	"context"
	"time"

	"github.com/15mga/kite/util"
)

// IStore 跨节点同步在线状态
type IStore interface {
	Beat(ctx context.Context, id string, ttl time.Duration) *util.Err
	Alive(ctx context.Context, id string) (bool, *util.Err)
	Drop(ctx context.Context, id string) *util.Err
	// Claim 独占玩家 id,同一时刻只有一个节点持有
	Claim(ctx context.Context, id string) (IClaim, *util.Err)
}

// IClaim 持有期间需在过期前 Extend
type IClaim interface {
	Extend(ctx context.Context) *util.Err
	Release(ctx context.Context) *util.Err
}
