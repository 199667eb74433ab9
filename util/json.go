package util

import jsoniter "github.com/json-iterator/go"

// 数字解析为 json.Number,避免大整数 id 丢精度
var _JsonConf = jsoniter.Config{
	UseNumber:   true,
	EscapeHTML:  true,
	SortMapKeys: true,
}.Froze()

func SetJsonConf(conf jsoniter.Config) {
	_JsonConf = conf.Froze()
}

func JsonMarshal(o any) ([]byte, *Err) {
	bytes, e := _JsonConf.Marshal(o)
	if e != nil {
		return nil, WrapErr(EcMarshallErr, e)
	}
	return bytes, nil
}

func JsonUnmarshal(bytes []byte, o any) *Err {
	e := _JsonConf.Unmarshal(bytes, o)
	if e != nil {
		return NewErr(EcUnmarshallErr, M{
			"error": e.Error(),
			"size":  len(bytes),
		})
	}
	return nil
}

// JsonUnmarshalM 只接受 json 对象
func JsonUnmarshalM(bytes []byte) (M, *Err) {
	var m M
	if err := JsonUnmarshal(bytes, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, NewErr(EcUnmarshallErr, M{
			"error": "not json object",
		})
	}
	return m, nil
}
