package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type frameConf struct {
	TickMs int `mapstructure:"tick_ms"`
	Max    int64
}

type testConf struct {
	Name  string
	Frame frameConf
}

func writeFile(t *testing.T, dir, name, content string) {
	assert.Nil(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadConf(t *testing.T) {
	dir := t.TempDir()
	SetConfRoot(dir)
	writeFile(t, dir, "base.yml", "name: kite\nframe:\n  tick_ms: 33\n  max: 10\n")
	writeFile(t, dir, "local.yml", "frame:\n  tick_ms: 16\n")

	var conf testConf
	err := LoadConf(&conf, ConvertConfLocalPath("base.yml", "local.yml", "missing.yml")...)
	assert.Nil(t, err)
	assert.Equal(t, "kite", conf.Name)
	assert.Equal(t, 16, conf.Frame.TickMs)
	assert.Equal(t, int64(10), conf.Frame.Max)
}

func TestLoadConfErr(t *testing.T) {
	var conf testConf
	assert.NotNil(t, LoadConf(&conf))
	assert.NotNil(t, LoadConf(&conf, "bad path"))
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "spawn.json")
	writeFile(t, dir, "spawn.json", `[{"id":"a"},{"id":"b"}]`)

	l := NewLoader(LocalLoader)
	var got []any
	n := l.DefaultLoad(JsonAsset, func(path string, o any) {
		assert.Equal(t, p, path)
		got = o.([]any)
	}, p, filepath.Join(dir, "none.json"))
	assert.Equal(t, 1, n)
	assert.Len(t, got, 2)

	assert.Equal(t, 0, l.Load("xml", LocalLoader, func(string, any) {}, p))
}
