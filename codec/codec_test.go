package codec

import (
	"testing"

	"github.com/15mga/kite/util"
	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/encoding/protowire"
)

func testFrame() *Frame {
	return &Frame{
		Num:   42,
		NowMs: 1700000000000,
		Entities: []Entity{
			{Id: "p1", Kind: "player", X: 1.5, Y: -2, Z: 1, Alive: true},
			{Id: "m1", Kind: "mob", X: 3, Y: 4},
		},
	}
}

func TestMarshalFrame(t *testing.T) {
	bytes := MarshalFrame(testFrame())
	var frame Frame
	assert.Nil(t, UnmarshalFrame(bytes, &frame))
	assert.Equal(t, *testFrame(), frame)
}

func TestUnmarshalSkipUnknown(t *testing.T) {
	bytes := MarshalFrame(&Frame{Num: 1})
	bytes = protowire.AppendTag(bytes, 15, protowire.BytesType)
	bytes = protowire.AppendString(bytes, "future")
	var frame Frame
	assert.Nil(t, UnmarshalFrame(bytes, &frame))
	assert.Equal(t, int64(1), frame.Num)
	assert.Len(t, frame.Entities, 0)
}

func TestUnmarshalBad(t *testing.T) {
	bytes := MarshalFrame(testFrame())
	var frame Frame
	err := UnmarshalFrame(bytes[:len(bytes)-3], &frame)
	assert.NotNil(t, err)
	assert.Equal(t, util.EcUnmarshallErr, err.Code())
}

func TestJsonFrame(t *testing.T) {
	bytes, err := JsonFrame(testFrame())
	assert.Nil(t, err)
	assert.Contains(t, string(bytes), `"now_ms":1700000000000`)
	var frame Frame
	assert.Nil(t, UnjsonFrame(bytes, &frame))
	assert.Equal(t, *testFrame(), frame)
}

type move struct {
	Id  string  `json:"id"`
	Dx  float32 `json:"dx"`
	Dy  float32 `json:"dy"`
	Run bool    `json:"run"`
}

func TestDecodeM(t *testing.T) {
	m, err := DecodeM[move](util.M{
		"id":  "p1",
		"dx":  "1.5",
		"dy":  -1,
		"run": 1,
	})
	assert.Nil(t, err)
	assert.Equal(t, move{Id: "p1", Dx: 1.5, Dy: -1, Run: true}, m)

	_, err = DecodeM[move](util.M{"dx": "left"})
	assert.NotNil(t, err)
}
