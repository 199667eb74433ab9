package main

import (
	"strings"

	"github.com/15mga/kite"
	"github.com/15mga/kite/codec"
	"github.com/15mga/kite/ecs"
	"github.com/15mga/kite/loader"
	"github.com/15mga/kite/sid"
	"github.com/15mga/kite/util"
)

// spawnItem 初始实体表的一项,id 为空时自动分配
type spawnItem struct {
	Id   string  `json:"id"`
	Kind string  `json:"kind"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
}

func spawnLoaderType(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return loader.HttpLoader
	}
	return loader.LocalLoader
}

// loadSpawn 在 frame 启动前加入静态实体,没有 peer 不会被回收,返回加入数量
func loadSpawn(scene *ecs.Scene[sid.Id], paths ...string) int {
	l := loader.NewLoader(loader.LocalLoader)
	count := 0
	action := func(path string, o any) {
		items, ok := o.([]any)
		if !ok {
			kite.Warn2(util.EcParamsErr, util.M{
				"path":  path,
				"error": "spawn table must be an array",
			})
			return
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			data, err := codec.DecodeM[spawnItem](m)
			if err != nil {
				err.AddParam("path", path)
				kite.Warn(err)
				continue
			}
			id := sid.NewId()
			if data.Id != "" {
				id, err = sid.ParseId(data.Id)
				if err != nil {
					err.AddParam("path", path)
					kite.Warn(err)
					continue
				}
			}
			e := ecs.NewEntity[sid.Id](id)
			e.AddComponents(newBody(data.Kind, data.X, data.Y))
			if err := scene.AddEntity(e); err != nil {
				kite.Warn(err)
				continue
			}
			count++
		}
	}
	for _, path := range paths {
		l.Load(loader.JsonAsset, spawnLoaderType(path), action, path)
	}
	kite.Info("spawn loaded", util.M{
		"paths":    paths,
		"entities": count,
	})
	return count
}
