package network

import (
	"context"
	"net/http"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/fasthttp/websocket"
)

type webDialer struct {
	name   string
	url    string
	header http.Header
	agent  *webAgent
}

func NewWebDialer(name, url string, header http.Header, msgType int, receiver kite.FnAgentBytes, options ...kite.AgentOption) kite.IDialer {
	return &webDialer{
		name:   name,
		url:    url,
		header: header,
		agent:  NewWebAgent(url, msgType, receiver, options...),
	}
}

func (d *webDialer) Name() string {
	return d.name
}

func (d *webDialer) Connect(ctx context.Context) *util.Err {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.url, d.header)
	if err != nil {
		return util.NewErr(util.EcConnectErr, util.M{
			"url":   d.url,
			"error": err.Error(),
		})
	}
	d.agent.Start(ctx, conn)
	return nil
}

func (d *webDialer) Agent() kite.IAgent {
	return d.agent
}
