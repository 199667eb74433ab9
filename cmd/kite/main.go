package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/ecs"
	"github.com/15mga/kite/loader"
	"github.com/15mga/kite/log"
	"github.com/15mga/kite/network"
	"github.com/15mga/kite/presence"
	"github.com/15mga/kite/render"
	"github.com/15mga/kite/render/headless"
	"github.com/15mga/kite/render/stream"
	"github.com/15mga/kite/render/term"
	"github.com/15mga/kite/sid"
	"github.com/15mga/kite/util"
	"github.com/15mga/kite/util/rds"
	"github.com/15mga/kite/worker"
	"github.com/fasthttp/websocket"
	"github.com/gdamore/tcell/v2"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SStream   ecs.TSystem = "stream"
	SHeadless ecs.TSystem = "headless"
	STerm     ecs.TSystem = "term"
)

func main() {
	kite.AddVar("conf", "conf/kite.yml", "conf files, comma separated, later overrides earlier")
	kite.AddVar("conf_root", "", "conf root dir, default exe dir")
	kite.AddLogger(log.NewStd())
	kite.ParseVar()

	conf := defConf()
	if root, _ := kite.GetVar[string]("conf_root"); root != "" {
		loader.SetConfRoot(root)
	}
	paths, _ := kite.GetVar[string]("conf")
	kite.Fatal(loader.LoadConf(conf, loader.ConvertConfLocalPath(strings.Split(paths, ",")...)...))

	initLog(conf)
	kite.SetExitTimeout(time.Duration(conf.ExitSecs) * time.Second)
	sid.SetNodeId(conf.Node)
	kite.SetLogDefParams(util.M{
		"node": conf.Node,
	})
	worker.InitParallel()

	var store presence.IStore
	if conf.Presence.Redis != "" {
		client := rds.NewRedis(
			rds.Addr(conf.Presence.Redis),
			rds.Db(conf.Presence.RedisDb),
			rds.Password(conf.Presence.Password))
		ctx, cancel := context.WithTimeout(util.Ctx(), time.Second*3)
		kite.Fatal(client.Ping(ctx))
		cancel()
		kite.BeforeExitFn("close redis", func() {
			kite.Warn(client.Close())
		})
		store = presence.NewRdsStore(client, presence.RdsPrefix(conf.Presence.Prefix))
	}
	trackerOpts := []presence.TrackerOption{
		presence.TrackerTimeout(conf.Presence.Timeout()),
	}
	if store != nil {
		trackerOpts = append(trackerOpts, presence.TrackerStore(store))
	}
	tracker := presence.NewTracker[sid.Id](trackerOpts...)
	kite.BeforeExitFn("close tracker", tracker.Close)

	hub := stream.NewHub()
	w := newWorld(tracker, hub)
	systems := []ecs.ISystem[sid.Id]{w}

	streamPipeline, err := render.NewPipeline[sid.Id](SStream,
		stream.IDriver(stream.New(hub, stream.Tune{
			Every:  conf.Render.Every,
			Binary: conf.Render.Binary,
		})),
		render.PipelineTag[sid.Id, stream.EntityData, stream.Tick](string(CBody)),
		render.PipelineExtract[sid.Id, stream.EntityData, stream.Tick](toEntity),
		render.PipelineParallel[sid.Id, stream.EntityData, stream.Tick](conf.Render.Parallel),
		render.PipelinePreTick[sid.Id, stream.EntityData, stream.Tick](func(f *ecs.Frame[sid.Id]) stream.Tick {
			return stream.Tick{
				Frame: f.Num(),
				NowMs: f.NowMillSecs(),
			}
		}))
	kite.Fatal(err)
	systems = append(systems, streamPipeline)

	headlessPipeline, err := render.NewPipeline[sid.Id](SHeadless,
		headless.IDriver(headless.New(conf.Render.LogEvery)),
		render.PipelineTag[sid.Id, string, int64](string(CBody)),
		render.PipelineExtract[sid.Id, string, int64](toId),
		render.PipelineStatus[sid.Id, string, int64](presence.TPeer),
		render.PipelinePreTick[sid.Id, string, int64](func(f *ecs.Frame[sid.Id]) int64 {
			return f.NowMillSecs()
		}))
	kite.Fatal(err)
	systems = append(systems, headlessPipeline)

	if conf.Render.Term {
		systems = append(systems, newTermPipeline(tracker))
	}

	// 掉线超时的玩家在帧末移除
	systems = append(systems, ecs.NewReapSystem[sid.Id](presence.TPeer))

	scene := ecs.NewScene[sid.Id]("main", "match")
	if len(conf.World.Spawn) > 0 {
		loadSpawn(scene, conf.World.Spawn...)
	}
	frameOpts := []ecs.FrameOption[sid.Id]{
		ecs.FrameSystems[sid.Id](systems...),
		ecs.FrameTickDur[sid.Id](conf.Frame.TickDur()),
	}
	if conf.Frame.Max > 0 {
		frameOpts = append(frameOpts, ecs.FrameMax[sid.Id](conf.Frame.Max))
	}
	frame := ecs.NewFrame[sid.Id](scene, frameOpts...)
	w.bindFrame(frame)

	startTransport(conf, w)
	frame.Start()
	startProfile(conf, tracker, streamPipeline, headlessPipeline)

	kite.Info("kite started", util.M{
		"node":  conf.Node,
		"ws":    conf.Transport.Ws,
		"kcp":   conf.Transport.Kcp,
		"tcp":   conf.Transport.Tcp,
		"term":  conf.Render.Term,
		"redis": conf.Presence.Redis != "",
	})
	kite.WaitExit()
}

func initLog(conf *Conf) {
	kite.ClearLoggers()
	opts := []log.StdOption{
		log.StdLogStrLvl(conf.Log.Levels...),
		log.StdColor(conf.Log.Color),
	}
	if conf.Log.File != "" {
		opts = append(opts, log.StdFile(conf.Log.File))
	} else if conf.Render.Term {
		// 终端被渲染占用
		opts = append(opts, log.StdWriter(io.Discard))
	} else {
		opts = append(opts, log.StdWriter(os.Stdout))
	}
	kite.AddLogger(log.NewStd(opts...))

	if conf.Log.MongoUri == "" {
		return
	}
	mgo, err := log.NewMgo(
		log.MgoClientOptions(options.Client().ApplyURI(conf.Log.MongoUri)),
		log.MgoDb(conf.Log.MongoDb),
		log.MgoTtl(conf.Log.MongoTtl),
		log.MgoLogLvl(conf.Log.Levels...))
	if err != nil {
		kite.Error(err)
		return
	}
	kite.AddLogger(mgo)
}

func startTransport(conf *Conf, w *world) {
	msgType := websocket.TextMessage
	if conf.Render.Binary {
		msgType = websocket.BinaryMessage
	}
	if conf.Transport.Ws != "" {
		listener := network.NewWebListener(func(conn *websocket.Conn) {
			network.NewWebAgent(conn.RemoteAddr().String(), msgType, w.Receive).
				Start(util.Ctx(), conn)
		}, network.WebAddr(conf.Transport.Ws), network.WebPath(conf.Transport.WsPath))
		kite.Fatal(listener.Start())
		kite.BeforeExitFn("close ws listener", listener.Close)
	}
	if conf.Transport.Kcp != "" {
		listener := network.NewKcpListener(conf.Transport.Kcp, func(conn net.Conn) {
			network.NewConnAgent(conn.RemoteAddr().String(), w.Receive).
				Start(util.Ctx(), conn)
		}, network.KcpNoDelay(true, 10))
		kite.Fatal(listener.Start())
		kite.BeforeExitFn("close kcp listener", listener.Close)
	}
	if conf.Transport.Tcp != "" {
		listener := network.NewTcpListener(conf.Transport.Tcp, func(conn net.Conn) {
			network.NewConnAgent(conn.RemoteAddr().String(), w.Receive).
				Start(util.Ctx(), conn)
		})
		kite.Fatal(listener.Start())
		kite.BeforeExitFn("close tcp listener", listener.Close)
	}
}

func newTermPipeline(tracker *presence.Tracker[sid.Id]) *render.Pipeline[sid.Id, term.Update, term.Status, term.EntityData, term.PreTick] {
	scr, e := tcell.NewScreen()
	if e != nil {
		kite.Fatal(util.WrapErr(util.EcRenderErr, e))
	}
	if e = scr.Init(); e != nil {
		kite.Fatal(util.WrapErr(util.EcRenderErr, e))
	}
	kite.BeforeExitFn("close term", scr.Fini)

	p, err := render.NewPipeline[sid.Id](STerm,
		term.IDriver(term.New(scr)),
		render.PipelineTag[sid.Id, term.EntityData, term.PreTick](string(CBody)),
		render.PipelineExtract[sid.Id, term.EntityData, term.PreTick](toGlyph),
		render.PipelineStatus[sid.Id, term.EntityData, term.PreTick](presence.TPeer),
		render.PipelinePreTick[sid.Id, term.EntityData, term.PreTick](func(f *ecs.Frame[sid.Id]) term.PreTick {
			return term.PreTick{
				Frame:  f.Num(),
				Header: fmt.Sprintf("kite frame %d peers %d", f.Num(), tracker.Count()),
			}
		}))
	kite.Fatal(err)

	go func() {
		for {
			switch ev := scr.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventResize:
				p.PushUpdate(term.Update{Kind: term.UpdateResize})
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					util.Cancel()
					return
				case tcell.KeyLeft:
					p.PushUpdate(camStep(p, -1, 0))
				case tcell.KeyRight:
					p.PushUpdate(camStep(p, 1, 0))
				case tcell.KeyUp:
					p.PushUpdate(camStep(p, 0, -1))
				case tcell.KeyDown:
					p.PushUpdate(camStep(p, 0, 1))
				}
			}
		}
	}()
	return p
}

func camStep(p *render.Pipeline[sid.Id, term.Update, term.Status, term.EntityData, term.PreTick], dx, dy int) term.Update {
	status := p.Status()
	return term.Update{
		Kind: term.UpdateCamera,
		X:    status.CamX + dx,
		Y:    status.CamY + dy,
	}
}

func toGlyph(c ecs.IComponent[sid.Id]) (term.EntityData, bool) {
	b, ok := c.(*body)
	if !ok {
		return term.EntityData{}, false
	}
	glyph := b.kind
	if glyph == "" {
		glyph = "@"
	}
	return term.EntityData{
		Id:    b.Entity().Id().String(),
		X:     b.x,
		Y:     b.y,
		Glyph: glyph,
		Fg:    tcell.ColorGreen,
	}, true
}

func startProfile(conf *Conf, tracker *presence.Tracker[sid.Id],
	streamPipeline *render.Pipeline[sid.Id, stream.Tune, stream.Stats, stream.EntityData, stream.Tick],
	headlessPipeline *render.Pipeline[sid.Id, headless.Update, headless.Status, string, int64]) {
	if conf.Profile <= 0 {
		return
	}
	ch := make(chan util.M, 1)
	util.StartProfile(time.Duration(conf.Profile)*time.Second, ch)
	worker.Go(func(_ []any) {
		for {
			select {
			case <-util.Ctx().Done():
				return
			case m := <-ch:
				stats := streamPipeline.Status()
				m["peers"] = tracker.Count()
				m["subscribers"] = stats.Subscribers
				m["sent"] = stats.Sent
				m["dropped"] = stats.Dropped
				m["entities"] = headlessPipeline.Status().Entities
				kite.Info("profile", m)
			}
		}
	})
}
