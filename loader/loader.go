package loader

import (
	"io"
	"net/http"
	"os"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
)

const (
	LocalLoader = "local"
	HttpLoader  = "http"
	JsonAsset   = "json"
)

// NewLoader 资源加载,如场景初始实体表
func NewLoader(defaultType string) *Loader {
	l := &Loader{
		defaultType:        defaultType,
		assetTypeToParser:  make(map[string]util.BytesToAnyErr),
		loaderTypeToLoader: make(map[string]util.StrToBytesErr),
	}
	l.BindLoader(LocalLoader, func(path string) ([]byte, *util.Err) {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return nil, util.NewErr(util.EcIo, util.M{
				"path":  path,
				"error": err.Error(),
			})
		}
		return bytes, nil
	})
	l.BindLoader(HttpLoader, func(path string) ([]byte, *util.Err) {
		res, err := http.Get(path)
		if err != nil {
			return nil, util.NewErr(util.EcIo, util.M{
				"path":  path,
				"error": err.Error(),
			})
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return nil, util.NewErr(util.EcIo, util.M{
				"path":   path,
				"status": res.StatusCode,
			})
		}
		bytes, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, util.NewErr(util.EcIo, util.M{
				"path":  path,
				"error": err.Error(),
			})
		}
		return bytes, nil
	})
	l.BindParser(JsonAsset, func(bytes []byte) (any, *util.Err) {
		var o any
		err := util.JsonUnmarshal(bytes, &o)
		return o, err
	})
	return l
}

type Loader struct {
	defaultType        string
	assetTypeToParser  map[string]util.BytesToAnyErr
	loaderTypeToLoader map[string]util.StrToBytesErr
}

func (l *Loader) BindParser(assetType string, marshaller util.BytesToAnyErr) {
	l.assetTypeToParser[assetType] = marshaller
}

func (l *Loader) BindLoader(loaderType string, loader util.StrToBytesErr) {
	l.loaderTypeToLoader[loaderType] = loader
}

func (l *Loader) DefaultLoad(assetType string, action util.FnStrAny, paths ...string) int {
	return l.Load(assetType, l.defaultType, action, paths...)
}

// Load 返回成功数量
func (l *Loader) Load(assetType string, loaderType string, action util.FnStrAny, paths ...string) int {
	marshaller, ok := l.assetTypeToParser[assetType]
	if !ok {
		kite.Error2(util.EcNotExist, util.M{
			"asset type": assetType,
		})
		return 0
	}
	loader, ok := l.loaderTypeToLoader[loaderType]
	if !ok {
		kite.Error2(util.EcNotExist, util.M{
			"loader type": loaderType,
		})
		return 0
	}
	count := 0
	for _, path := range paths {
		bytes, e := loader(path)
		if e != nil {
			kite.Error(e)
			continue
		}
		o, e := marshaller(bytes)
		if e != nil {
			kite.Error(e)
			continue
		}
		action(path, o)
		count++
	}
	return count
}
