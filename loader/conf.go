package loader

import (
	"path/filepath"
	"strings"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/spf13/viper"
)

const (
	ConfLocalLoader = "local"
	ConfPathSep     = "|"
)

type ConfLoader func(path string, v *viper.Viper) *util.Err

var (
	_TypeToLoader   = make(map[string]ConfLoader)
	_ConfPathParser = func(path string) (string, string, *util.Err) {
		ss := strings.Split(path, ConfPathSep)
		if len(ss) != 2 {
			return "", "", util.NewErr(util.EcParamsErr, util.M{
				"path": path,
			})
		}
		return ss[0], ss[1], nil
	}
	_ConfRoot = util.WorkDir()
)

func init() {
	SetConfLoader(ConfLocalLoader, confLocalLoader)
}

func SetConfRoot(p string) {
	_ConfRoot = p
}

func SetConfPathParser(parser util.StrToStr2Err) {
	_ConfPathParser = parser
}

// LoadConf 按顺序合并配置,后面的覆盖前面的,单个文件失败只记录日志
func LoadConf(conf any, paths ...string) *util.Err {
	l := len(paths)
	if l == 0 {
		return util.NewErr(util.EcParamsErr, util.M{
			"error": "no conf path",
		})
	}
	vpr := viper.New()
	loaded := 0
	for _, p := range paths {
		loaderType, filePath, err := _ConfPathParser(p)
		if err != nil {
			kite.Warn(err)
			continue
		}
		loader, ok := _TypeToLoader[loaderType]
		if !ok {
			kite.Warn2(util.EcNotExist, util.M{
				"loader type": loaderType,
			})
			continue
		}
		sub := viper.New()
		err = loader(filePath, sub)
		if err != nil {
			kite.Warn(err)
			continue
		}
		e := vpr.MergeConfigMap(sub.AllSettings())
		if e != nil {
			kite.Warn3(util.EcParseErr, e)
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return util.NewErr(util.EcNotExist, util.M{
			"paths": paths,
		})
	}
	e := vpr.Unmarshal(conf)
	if e != nil {
		return util.WrapErr(util.EcUnmarshallErr, e)
	}
	return nil
}

func SetConfLoader(typ string, loader ConfLoader) {
	_TypeToLoader[typ] = loader
}

func GetConfLoader(typ string) ConfLoader {
	return _TypeToLoader[typ]
}

func confLocalLoader(p string, v *viper.Viper) *util.Err {
	ext := strings.TrimPrefix(filepath.Ext(p), ".")
	switch ext {
	case "yml":
		ext = "yaml"
	case "":
		ext = "yaml"
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(_ConfRoot, p)
	}
	v.SetConfigFile(p)
	v.SetConfigType(ext)
	err := v.ReadInConfig()
	if err != nil {
		return util.NewErr(util.EcParamsErr, util.M{
			"error": err.Error(),
			"path":  p,
		})
	}
	return nil
}

func ConvertConfLocalPath(paths ...string) []string {
	slc := make([]string, len(paths))
	for i, p := range paths {
		slc[i] = ConfLocalLoader + ConfPathSep + p
	}
	return slc
}
