package frontend

import (
	"bytes"
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"chessboard/internal/logging"
	"chessboard/internal/oracle"
	"chessboard/internal/render"
	"chessboard/internal/selection"
	"chessboard/internal/templates"
)

// SocketPath is where the board page opens its websocket.
const SocketPath = "/ws"

// NewApp builds the board host. Every websocket connection gets its own
// session against o.
func NewApp(o oracle.Oracle, opts ...selection.Option) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := templates.WriteBoardHTML(&buf, SocketPath); err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Use(SocketPath, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	app.Get(SocketPath, websocket.New(func(c *websocket.Conn) {
		serveConn(c, o, opts)
	}))
	return app
}

// connSink writes render instructions as websocket frames.
type connSink struct {
	conn *websocket.Conn
}

func (s connSink) Apply(ops []render.Op) error {
	return s.conn.WriteJSON(Reply{Kind: ReplyOps, Ops: ops})
}

func serveConn(c *websocket.Conn, o oracle.Oracle, opts []selection.Option) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notify := func(text string) error {
		return c.WriteJSON(Reply{Kind: ReplyStatus, Text: text})
	}
	s := NewSession(o, connSink{conn: c}, notify, opts...)
	logging.Debugf("board connected from %s", c.RemoteAddr())

	if err := s.Start(ctx); err != nil {
		log.Printf("write error: %v", err)
		return
	}
	for {
		mt, msg, err := c.ReadMessage()
		if err != nil {
			logging.Debugf("read error: %v", err)
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		if err := s.Handle(ctx, msg); err != nil {
			log.Printf("write error: %v", err)
			return
		}
	}
}
