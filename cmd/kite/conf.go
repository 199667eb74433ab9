package main

import "time"

type Conf struct {
	Node      int64         `mapstructure:"node"`
	Profile   int           `mapstructure:"profile_secs"`
	ExitSecs  int           `mapstructure:"exit_secs"`
	Log       LogConf       `mapstructure:"log"`
	Frame     FrameConf     `mapstructure:"frame"`
	Presence  PresenceConf  `mapstructure:"presence"`
	Transport TransportConf `mapstructure:"transport"`
	Render    RenderConf    `mapstructure:"render"`
	World     WorldConf     `mapstructure:"world"`
}

type LogConf struct {
	Levels   []string `mapstructure:"levels"`
	File     string   `mapstructure:"file"`
	Color    bool     `mapstructure:"color"`
	MongoUri string   `mapstructure:"mongo_uri"`
	MongoDb  string   `mapstructure:"mongo_db"`
	MongoTtl int32    `mapstructure:"mongo_ttl"`
}

type FrameConf struct {
	TickMs int   `mapstructure:"tick_ms"`
	Max    int64 `mapstructure:"max"`
}

type PresenceConf struct {
	TimeoutMs int    `mapstructure:"timeout_ms"`
	Redis     string `mapstructure:"redis"`
	RedisDb   int    `mapstructure:"redis_db"`
	Password  string `mapstructure:"password"`
	Prefix    string `mapstructure:"prefix"`
}

type TransportConf struct {
	Ws     string `mapstructure:"ws"`
	WsPath string `mapstructure:"ws_path"`
	Kcp    string `mapstructure:"kcp"`
	Tcp    string `mapstructure:"tcp"`
}

// WorldConf spawn 为初始实体表,本地路径或 http 地址
type WorldConf struct {
	Spawn []string `mapstructure:"spawn"`
}

type RenderConf struct {
	Every    int   `mapstructure:"every"`
	Binary   bool  `mapstructure:"binary"`
	Term     bool  `mapstructure:"term"`
	LogEvery int64 `mapstructure:"log_every"`
	Parallel int   `mapstructure:"parallel"`
}

func defConf() *Conf {
	return &Conf{
		Node:     1,
		Profile:  60,
		ExitSecs: 10,
		Log: LogConf{
			Levels:   []string{"info", "warn", "error", "fatal"},
			Color:    true,
			MongoDb:  "kite",
			MongoTtl: 604800,
		},
		Frame: FrameConf{
			TickMs: 33,
		},
		Presence: PresenceConf{
			TimeoutMs: 10000,
			Prefix:    "kite:presence:",
		},
		Transport: TransportConf{
			Ws:     ":7737",
			WsPath: "/ws",
		},
		Render: RenderConf{
			Every:    2,
			LogEvery: 300,
			Parallel: 256,
		},
	}
}

func (c *FrameConf) TickDur() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

func (c *PresenceConf) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
