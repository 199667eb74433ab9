package headless

import (
	"testing"

	"github.com/15mga/kite"
	"github.com/15mga/kite/render"
	"github.com/15mga/kite/util"
	"github.com/stretchr/testify/assert"
)

type countLogger struct {
	msgs []string
}

func (l *countLogger) Log(level kite.TLevel, msg, caller string, stack []byte, params util.M) {
	l.msgs = append(l.msgs, msg)
}

func TestBackend(t *testing.T) {
	logger := &countLogger{}
	kite.ClearLoggers()
	kite.AddLogger(logger)
	defer kite.ClearLoggers()

	b := New(2)
	for i := int64(1); i <= 4; i++ {
		_ = b.PreTick(i * 100)
		assert.Nil(t, b.Draw(i, []string{"a", "b"}))
	}
	assert.Equal(t, Status{Frames: 4, Entities: 2, LogEvery: 2}, b.Status())
	assert.Len(t, logger.msgs, 2)

	c, err := render.Fork[Update, Status, string, int64](b)
	assert.Nil(t, err)
	_ = c.Update(Update{LogEvery: 0})
	_ = c.Draw(5, nil)
	assert.Equal(t, int64(2), b.Status().LogEvery)
	assert.Equal(t, Status{Frames: 5, Entities: 0, LogEvery: 0}, c.Status())
	assert.Len(t, logger.msgs, 2)
}
