package render

// IBackend 可替换的渲染后端,四个类型参数:
//   - SU 状态变更请求
//   - S  状态快照
//   - ED 每帧绘制的实体数据
//   - PT 每帧绘制前准备的数据
//
// 实现需要能在协程间共享和传递,Clone 得到的副本不与原对象共享未加锁的可变状态
type IBackend[SU, S, ED, PT any] interface {
	Clone() IBackend[SU, S, ED, PT]
}

// AssertBackend 配合 var _ = 做类型检查
func AssertBackend[SU, S, ED, PT any](b IBackend[SU, S, ED, PT]) IBackend[SU, S, ED, PT] {
	return b
}
