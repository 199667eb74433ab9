package kite

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVar(t *testing.T) {
	AddVar("conf", "kite.yml", "config file")
	AddVar("node_id", int64(1), "snowflake node id")

	parseFlag(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-node_id", "7"})
	t.Setenv("CONF", "prod.yml")
	parseEnv()

	conf, ok := GetVar[string]("conf")
	assert.True(t, ok)
	assert.Equal(t, "prod.yml", conf)

	nodeId, ok := GetVar[int64]("node_id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), nodeId)

	_, ok = GetVar[int]("node_id")
	assert.False(t, ok)

	_, ok = GetVar[string]("missing")
	assert.False(t, ok)
}
