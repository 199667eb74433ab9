package kite

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/15mga/kite/ds"
	"github.com/15mga/kite/util"
)

type varItem struct {
	name  string
	usage string
	val   any
}

type Var interface {
	int | int64 | float64 | bool | string
}

var (
	_VarMap = ds.NewKSet[string, *varItem](4, func(item *varItem) string {
		return item.name
	})
)

func AddVar[T Var](name string, def T, usage string) {
	_VarMap.Set(&varItem{
		name:  name,
		val:   def,
		usage: usage,
	})
}

// ParseVar 先解析命令行,再用同名大写环境变量覆盖
func ParseVar() {
	parseFlag(flag.CommandLine, os.Args[1:])
	parseEnv()
}

func parseFlag(set *flag.FlagSet, args []string) {
	m := make(map[string]any, _VarMap.Count())
	for _, item := range _VarMap.Values() {
		switch d := item.val.(type) {
		case int:
			m[item.name] = set.Int(item.name, d, item.usage)
		case int64:
			m[item.name] = set.Int64(item.name, d, item.usage)
		case float64:
			m[item.name] = set.Float64(item.name, d, item.usage)
		case bool:
			m[item.name] = set.Bool(item.name, d, item.usage)
		case string:
			m[item.name] = set.String(item.name, d, item.usage)
		}
	}
	if err := set.Parse(args); err != nil {
		Warn3(util.EcParseErr, err)
	}
	for _, item := range _VarMap.Values() {
		switch d := m[item.name].(type) {
		case *int:
			item.val = *d
		case *int64:
			item.val = *d
		case *float64:
			item.val = *d
		case *bool:
			item.val = *d
		case *string:
			item.val = *d
		}
	}
}

func parseEnv() {
	for _, item := range _VarMap.Values() {
		v, ok := os.LookupEnv(strings.ToUpper(item.name))
		if !ok {
			continue
		}
		var e error
		switch item.val.(type) {
		case int:
			var i int
			i, e = strconv.Atoi(v)
			if e == nil {
				item.val = i
			}
		case int64:
			var i int64
			i, e = strconv.ParseInt(v, 10, 64)
			if e == nil {
				item.val = i
			}
		case float64:
			var f float64
			f, e = strconv.ParseFloat(v, 64)
			if e == nil {
				item.val = f
			}
		case bool:
			item.val = strings.ToLower(v) == "true"
		case string:
			item.val = v
		}
		if e != nil {
			Warn2(util.EcParseErr, util.M{
				"env":   item.name,
				"value": v,
				"error": e.Error(),
			})
		}
	}
}

func GetVar[T Var](name string) (T, bool) {
	o, ok := _VarMap.Get(name)
	if !ok {
		return util.Default[T](), false
	}
	v, ok := o.val.(T)
	return v, ok
}
