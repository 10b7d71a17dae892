package main

import (
	"bytes"
	"context"
	"image"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/zoom_mandel"
	"github.com/marben/zoom_mandel/internal/display"
)

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 8
)

// stateMsg is the HUD update sent as a JSON text message.
type stateMsg struct {
	Type       string  `json:"type"`
	Busy       bool    `json:"busy"`
	Workers    int     `json:"workers"`
	Active     int     `json:"active"`
	Progress   float64 `json:"progress"`
	Generation uint64  `json:"generation"`
	Xmin       float64 `json:"xmin"`
	Xmax       float64 `json:"xmax"`
	Ymin       float64 `json:"ymin"`
	Ymax       float64 `json:"ymax"`
	Width      int     `json:"width"`  // window width
	Height     int     `json:"height"` // window height
}

// clientMsg is what the page sends: zoom, reset or refresh.
type clientMsg struct {
	Type  string  `json:"type"`
	X     int     `json:"x"` // window coordinates, y down
	Y     int     `json:"y"`
	Ratio float64 `json:"ratio"`
}

// outMsg is either a PNG frame (binary) or a state update (text).
type outMsg struct {
	frame []byte
	state *stateMsg
}

type client struct {
	conn *websocket.Conn
	send chan outMsg
}

// hub renders finished frames for the window and fans them out to every
// connected page.
type hub struct {
	screen display.Screen
	orch   *mandel.Orchestrator

	refreshMu sync.Mutex // serializes compose+broadcast so the newest state goes out last

	mu      sync.Mutex
	last    *image.RGBA // last rendered frame, raster size
	png     []byte      // last composed window, PNG
	clients map[*client]struct{}
}

func newHub(screen display.Screen) *hub {
	return &hub{
		screen:  screen,
		clients: make(map[*client]struct{}),
	}
}

func (h *hub) attach(o *mandel.Orchestrator) { h.orch = o }

// RenderFrame implements mandel.Renderer.
func (h *hub) RenderFrame(f mandel.Frame) {
	log.Printf("frame %d: %d escaped samples in %s", f.Generation, f.Drawn, f.Elapsed)
	h.mu.Lock()
	h.last = f.Img
	h.mu.Unlock()
	h.refresh()
}

func (h *hub) stateChanged(s mandel.State) {
	h.refresh()
}

// refresh recomposes the window for the current state and broadcasts it.
func (h *hub) refresh() {
	if h.orch == nil {
		return
	}
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	st := h.state()
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	img, err := h.screen.Compose(last, st.Busy)
	if err != nil {
		log.Printf("compose: %v", err)
		return
	}
	var buf bytes.Buffer
	if err := display.EncodePNG(&buf, img); err != nil {
		log.Printf("encode: %v", err)
		return
	}

	h.mu.Lock()
	h.png = buf.Bytes()
	msgs := []outMsg{{frame: h.png}, {state: &st}}
	for c := range h.clients {
		for _, m := range msgs {
			h.enqueue(c, m)
		}
	}
	h.mu.Unlock()
}

func (h *hub) state() stateMsg {
	vp := h.orch.Viewport()
	pool := h.orch.Pool()
	return stateMsg{
		Type:       "state",
		Busy:       h.orch.State() == mandel.Busy,
		Workers:    pool.Workers(),
		Active:     pool.Active(),
		Progress:   pool.Progress(),
		Generation: h.orch.Generation(),
		Xmin:       vp.Xmin,
		Xmax:       vp.Xmax,
		Ymin:       vp.Ymin,
		Ymax:       vp.Ymax,
		Width:      h.screen.Width,
		Height:     h.screen.Height,
	}
}

// enqueue must be called with h.mu held. A client too slow to keep up
// loses messages; the next refresh carries the full window again.
func (h *hub) enqueue(c *client, m outMsg) {
	select {
	case c.send <- m:
	default:
		log.Printf("client send buffer full, dropping message")
	}
}

func (h *hub) join(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan outMsg, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	if h.png != nil {
		h.enqueue(c, outMsg{frame: h.png})
	}
	h.mu.Unlock()

	if h.orch != nil {
		st := h.state()
		h.mu.Lock()
		h.enqueue(c, outMsg{state: &st})
		h.mu.Unlock()
	}
	log.Printf("clients: %d", n)
	return c
}

func (h *hub) leave(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("clients: %d", n)
}

// handle applies one page request.
func (h *hub) handle(m clientMsg) error {
	switch m.Type {
	case "zoom":
		ratio := m.Ratio
		if ratio == 0 {
			ratio = mandel.DefaultZoomRatio
		}
		vp := h.orch.Viewport()
		x, y := h.screen.ToRaster(m.X, m.Y, vp.Width, vp.Height)
		return h.orch.Zoom(x, y, ratio)
	case "reset":
		h.orch.Reset()
	case "refresh":
		h.orch.Recompute()
	default:
		log.Printf("unknown message type %q", m.Type)
	}
	return nil
}

// readLoop reads page requests until the connection fails.
func (h *hub) readLoop(ctx context.Context, c *client) error {
	for {
		var m clientMsg
		if err := wsjson.Read(ctx, c.conn, &m); err != nil {
			return err
		}
		if err := h.handle(m); err != nil {
			// a bad request is reported but does not drop the page
			log.Printf("request %+v: %v", m, err)
		}
	}
}

// writeLoop sends queued messages until ctx is done or a write fails.
func (c *client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-c.send:
			if err := c.write(ctx, m); err != nil {
				log.Printf("write: %v", err)
				c.conn.CloseNow()
				return
			}
		}
	}
}

func (c *client) write(ctx context.Context, m outMsg) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if m.state != nil {
		return wsjson.Write(ctx, c.conn, m.state)
	}
	return c.conn.Write(ctx, websocket.MessageBinary, m.frame)
}
