package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestId(t *testing.T) {
	SetNodeId(1)
	a := NewId()
	b := NewId()
	assert.NotEqual(t, a, b)
	assert.Len(t, a.String(), 16)

	c, err := ParseId(a.String())
	assert.Nil(t, err)
	assert.Equal(t, a, c)

	_, err = ParseId("zz")
	assert.NotNil(t, err)
}

func TestGetIdWithName(t *testing.T) {
	BindIdFac("const", func() int64 {
		return 255
	})
	assert.Equal(t, int64(255), GetIdWithName("const"))
	assert.Equal(t, "00000000000000ff", Id(255).String())
	assert.Panics(t, func() {
		GetIdWithName("missing")
	})
}
