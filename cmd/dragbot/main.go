package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"

	"tinymahjong/internal/client"
	"tinymahjong/internal/config"
	"tinymahjong/internal/dispatch"
	"tinymahjong/internal/gesture"
	"tinymahjong/internal/logging"
)

type step struct {
	item  string
	to    string
	index int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	server := flag.String("server", cfg.Client.ServerURL, "authority base URL")
	tableID := flag.String("table", cfg.Client.Table, "table id (empty creates one)")
	seat := flag.String("seat", cfg.Client.Seat, "seat to play")
	scoped := flag.Bool("scoped", cfg.Client.Scoped, "address events to zone endpoints")
	useHTTP := flag.Bool("http", false, "post events instead of sending them on the websocket")
	drags := flag.Int("drags", 10, "number of drags to perform")
	interval := flag.Duration("interval", 400*time.Millisecond, "pause between drags")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	logging.Debug = *debug
	defer logging.Sync()

	if *tableID == "" {
		*tableID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	wsURL := "ws" + strings.TrimPrefix(strings.TrimRight(*server, "/"), "http") + "/ws/" + *tableID
	ws, err := dispatch.DialWS(ctx, wsURL)
	if err != nil {
		fail(fmt.Errorf("dial %s: %w", wsURL, err))
	}
	defer ws.Close()

	first, err := ws.Next()
	if err != nil || first.Type != dispatch.FrameRender {
		fail(fmt.Errorf("no initial render: %v", err))
	}

	var ch dispatch.Channel = ws
	if *useHTTP {
		ch = dispatch.NewHTTPChannel(*server, *tableID)
	}
	mode := dispatch.Global
	if *scoped {
		mode = dispatch.Scoped
	}
	c, err := client.New(wrap(first.Markup), ch, client.Options{Seat: *seat, Mode: mode})
	if err != nil {
		fail(err)
	}
	log := logging.With("table", *tableID, "seat", *seat, "client", c.ID)
	log.Infof("joined with %d zones bound", len(c.Bound()))

	go func() {
		for {
			f, err := ws.Next()
			if err != nil {
				if ctx.Err() == nil {
					log.Warnf("read: %v", err)
				}
				stop()
				return
			}
			switch f.Type {
			case dispatch.FrameRender:
				if err := c.Apply(f.Markup); err != nil {
					log.Warnf("apply render: %v", err)
				}
			case dispatch.FrameError:
				log.Warnf("authority rejected %s: %s", f.Ref, f.Error)
			}
		}
	}()

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 7))
	done := 0
	for done < *drags {
		select {
		case <-ctx.Done():
			log.Infof("stopped after %d drags", done)
			return
		case <-time.After(*interval):
		}

		steps := candidates(c, *seat)
		rng.Shuffle(len(steps), func(i, j int) { steps[i], steps[j] = steps[j], steps[i] })
		moved := false
		for _, s := range steps {
			err := c.Drag(s.item, s.to, s.index)
			if errors.Is(err, client.ErrRejected) || errors.Is(err, gesture.ErrRejected) {
				continue
			}
			if err != nil {
				log.Warnf("drag %s to %s: %v", s.item, s.to, err)
				continue
			}
			log.Infof("dragged %s to %s[%d]", s.item, s.to, s.index)
			moved = true
			break
		}
		if !moved {
			log.Infof("no legal drag left")
			return
		}
		done++
	}
	log.Infof("done: %d drags", done)
}

// candidates lists drags worth trying from the current document.
func candidates(c *client.Client, seat string) []step {
	hand := "concealed-" + seat
	targets := []string{"exposed-" + seat, "hiddengongs-" + seat, "discards", "wintile-" + seat}

	var out []step
	tiles := c.Items(hand)
	for i, tile := range tiles {
		if i > 0 {
			out = append(out, step{item: tile, to: hand, index: 0})
		}
		for _, to := range targets {
			out = append(out, step{item: tile, to: to, index: 0})
		}
	}
	for _, tile := range c.Items("exposed-" + seat) {
		out = append(out, step{item: tile, to: hand, index: len(tiles)})
	}
	for _, tile := range c.Items("deckoffer") {
		out = append(out, step{item: tile, to: hand, index: len(tiles)})
	}
	return out
}

func wrap(markup string) string {
	return "<html><body>" + markup + "</body></html>"
}

func fail(err error) {
	fmt.Println(err.Error())
	os.Exit(1)
}
