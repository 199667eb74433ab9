package codec

import (
	"github.com/15mga/kite/util"
	"github.com/mitchellh/mapstructure"
)

// DecodeM 客户端松散类型的参数转结构体,字段名用 json tag,数字字符串会转换
func DecodeM[T any](m util.M) (T, *util.Err) {
	var o T
	decoder, e := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &o,
	})
	if e != nil {
		return o, util.WrapErr(util.EcParamsErr, e)
	}
	e = decoder.Decode(map[string]any(m))
	if e != nil {
		return o, util.WrapErr(util.EcUnmarshallErr, e)
	}
	return o, nil
}
