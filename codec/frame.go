package codec

import (
	"math"

	"github.com/15mga/kite/util"
	"google.golang.org/protobuf/encoding/protowire"
)

// 字段编号
const (
	fFrameNum    protowire.Number = 1
	fFrameNowMs  protowire.Number = 2
	fFrameEntity protowire.Number = 3

	fEntityId    protowire.Number = 1
	fEntityKind  protowire.Number = 2
	fEntityX     protowire.Number = 3
	fEntityY     protowire.Number = 4
	fEntityZ     protowire.Number = 5
	fEntityAlive protowire.Number = 6
)

type Frame struct {
	Num      int64    `json:"num"`
	NowMs    int64    `json:"now_ms"`
	Entities []Entity `json:"entities"`
}

type Entity struct {
	Id    string  `json:"id"`
	Kind  string  `json:"kind,omitempty"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Z     float32 `json:"z,omitempty"`
	Alive bool    `json:"alive"`
}

// MarshalFrame protobuf 线格式,可由 .proto 定义的同构消息解析
func MarshalFrame(frame *Frame) []byte {
	bytes := make([]byte, 0, 16+len(frame.Entities)*32)
	bytes = protowire.AppendTag(bytes, fFrameNum, protowire.VarintType)
	bytes = protowire.AppendVarint(bytes, uint64(frame.Num))
	bytes = protowire.AppendTag(bytes, fFrameNowMs, protowire.VarintType)
	bytes = protowire.AppendVarint(bytes, uint64(frame.NowMs))
	var buf []byte
	for i := range frame.Entities {
		buf = appendEntity(buf[:0], &frame.Entities[i])
		bytes = protowire.AppendTag(bytes, fFrameEntity, protowire.BytesType)
		bytes = protowire.AppendBytes(bytes, buf)
	}
	return bytes
}

func appendEntity(bytes []byte, e *Entity) []byte {
	if e.Id != "" {
		bytes = protowire.AppendTag(bytes, fEntityId, protowire.BytesType)
		bytes = protowire.AppendString(bytes, e.Id)
	}
	if e.Kind != "" {
		bytes = protowire.AppendTag(bytes, fEntityKind, protowire.BytesType)
		bytes = protowire.AppendString(bytes, e.Kind)
	}
	bytes = protowire.AppendTag(bytes, fEntityX, protowire.Fixed32Type)
	bytes = protowire.AppendFixed32(bytes, math.Float32bits(e.X))
	bytes = protowire.AppendTag(bytes, fEntityY, protowire.Fixed32Type)
	bytes = protowire.AppendFixed32(bytes, math.Float32bits(e.Y))
	bytes = protowire.AppendTag(bytes, fEntityZ, protowire.Fixed32Type)
	bytes = protowire.AppendFixed32(bytes, math.Float32bits(e.Z))
	if e.Alive {
		bytes = protowire.AppendTag(bytes, fEntityAlive, protowire.VarintType)
		bytes = protowire.AppendVarint(bytes, protowire.EncodeBool(true))
	}
	return bytes
}

func UnmarshalFrame(bytes []byte, frame *Frame) *util.Err {
	frame.Entities = frame.Entities[:0]
	for len(bytes) > 0 {
		num, typ, n := protowire.ConsumeTag(bytes)
		if n < 0 {
			return unmarshalErr(n)
		}
		bytes = bytes[n:]
		switch {
		case num == fFrameNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			frame.Num = int64(v)
			bytes = bytes[n:]
		case num == fFrameNowMs && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			frame.NowMs = int64(v)
			bytes = bytes[n:]
		case num == fFrameEntity && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			var e Entity
			if err := unmarshalEntity(v, &e); err != nil {
				return err
			}
			frame.Entities = append(frame.Entities, e)
			bytes = bytes[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			bytes = bytes[n:]
		}
	}
	return nil
}

func unmarshalEntity(bytes []byte, e *Entity) *util.Err {
	for len(bytes) > 0 {
		num, typ, n := protowire.ConsumeTag(bytes)
		if n < 0 {
			return unmarshalErr(n)
		}
		bytes = bytes[n:]
		switch {
		case (num == fEntityId || num == fEntityKind) && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			if num == fEntityId {
				e.Id = v
			} else {
				e.Kind = v
			}
			bytes = bytes[n:]
		case num >= fEntityX && num <= fEntityZ && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			f := math.Float32frombits(v)
			switch num {
			case fEntityX:
				e.X = f
			case fEntityY:
				e.Y = f
			default:
				e.Z = f
			}
			bytes = bytes[n:]
		case num == fEntityAlive && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			e.Alive = protowire.DecodeBool(v)
			bytes = bytes[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, bytes)
			if n < 0 {
				return unmarshalErr(n)
			}
			bytes = bytes[n:]
		}
	}
	return nil
}

func unmarshalErr(n int) *util.Err {
	return util.WrapErr(util.EcUnmarshallErr, protowire.ParseError(n))
}

func JsonFrame(frame *Frame) ([]byte, *util.Err) {
	return util.JsonMarshal(frame)
}

func UnjsonFrame(bytes []byte, frame *Frame) *util.Err {
	return util.JsonUnmarshal(bytes, frame)
}
