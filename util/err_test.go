package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	err := NewErr(EcNotAlive, M{
		"id": "p1",
	})
	assert.Equal(t, EcNotAlive, err.Code())
	assert.Equal(t, "not_alive", err.String())
	assert.NotNil(t, err.Stack())
	v, ok := err.GetParam("id")
	assert.True(t, ok)
	assert.Equal(t, "p1", v)

	wrapped := WrapErr(EcIo, errors.New("broken pipe"))
	assert.Equal(t, "broken pipe", wrapped.Error())

	noStack := NewNoStackErr(EcEmpty, nil)
	assert.Nil(t, noStack.Stack())
	noStack.AddParam("k", 1)
	assert.Equal(t, M{"k": 1}, noStack.Params())
}

func TestErrCodeToStr(t *testing.T) {
	const ecCustom TErrCode = 1001
	assert.Equal(t, "1001", ErrCodeToStr(ecCustom))
	SetErrCodeToStr(ecCustom, "custom")
	assert.Equal(t, "custom", ErrCodeToStr(ecCustom))
}

func TestParseAddrPort(t *testing.T) {
	port, err := ParseAddrPort("127.0.0.1:7737")
	assert.Nil(t, err)
	assert.Equal(t, 7737, port)

	_, err = ParseAddrPort("localhost")
	assert.NotNil(t, err)
	assert.Equal(t, EcParamsErr, err.Code())
}

func TestGenMask(t *testing.T) {
	mask := GenMask(1, 4)
	assert.True(t, TestMask(4, mask))
	assert.False(t, TestMask(2, mask))
}

func TestJsonUnmarshalM(t *testing.T) {
	m, err := JsonUnmarshalM([]byte(`{"op":"move","x":1}`))
	assert.Nil(t, err)
	assert.Equal(t, "move", m["op"])

	_, err = JsonUnmarshalM([]byte(`null`))
	assert.NotNil(t, err)
	assert.Equal(t, EcUnmarshallErr, err.Code())

	_, err = JsonUnmarshalM([]byte(`[1]`))
	assert.NotNil(t, err)
}
