package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

//go:embed static
var static embed.FS

// webServer creates server serving the embedded ./static folder
// along with the websocket endpoint the page talks to
func webServer(ctx context.Context, port int, h *hub) *http.Server {
	staticFS, err := fs.Sub(static, "static")
	if err != nil {
		// the embed directive guarantees the directory
		panic(err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(ctx, h))
	mux.Handle("/", http.FileServerFS(staticFS))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost:%d", port)
	return srv
}

// websocketHandler handles the http ws endpoint
// every accepted page joins the hub until it disconnects or ctx is done
func websocketHandler(ctx context.Context, h *hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten in prod
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(r.Context(), cancel)
		defer stop()

		cl := h.join(c)
		defer h.leave(cl)
		go cl.writeLoop(ctx)

		err = h.readLoop(ctx, cl)
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("websocket %s: %v", r.RemoteAddr, err)
	}
}
