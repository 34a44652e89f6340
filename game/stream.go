package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/smoketrail/stream"
)

// startStream serves the websocket hub in the background until Unload.
func (g *Game) startStream(addr string) {
	g.hub = stream.NewHub()
	g.hub.OnCommand = func(cmd stream.Command) {
		switch cmd.Type {
		case "reset":
			g.RequestReset()
		default:
			slog.Debug("ignoring viewer command", "type", cmd.Type)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.streamCancel = cancel
	g.streamDone = make(chan struct{})
	go func() {
		defer close(g.streamDone)
		slog.Info("streaming frames", "addr", addr)
		if err := stream.Serve(ctx, addr, g.hub); err != nil {
			slog.Error("stream server stopped", "error", err)
		}
	}()
}

func (g *Game) stopStream() {
	if g.streamCancel == nil {
		return
	}
	g.streamCancel()
	<-g.streamDone
	g.streamCancel = nil
}

// broadcast sends the current frame to viewers on the configured cadence.
func (g *Game) broadcast() {
	if g.hub == nil || g.frame%uint64(g.cfg.Stream.Every) != 0 || g.hub.ClientCount() == 0 {
		return
	}
	stream.EncodeFrame(&g.frameMsg, g.snapshot(), g.cfg.Stream.Downsample, g.palette.HotTemp)
	g.hub.Broadcast(&g.frameMsg)
}
