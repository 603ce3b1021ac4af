package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"resumaker/internal/store"
	"resumaker/internal/tasks"
)

const (
	wsPingInterval = 30 * time.Second
	wsPongWait     = wsPingInterval + 10*time.Second
	wsWriteWait    = 5 * time.Second
)

var errSubscriptionClosed = errors.New("subscription closed")

// WsHandler 把某份简历通知频道上的消息转发给浏览器。
type WsHandler struct {
	redisClient    *redis.Client
	store          *store.Service
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

func NewWsHandler(redisClient *redis.Client, svc *store.Service, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		redisClient:    redisClient,
		store:          svc,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// checkOrigin 未配置白名单时只接受同源连接。
func (h *WsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	if len(h.allowedOrigins) > 0 {
		return false
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// HandleConnection 处理 GET /v1/ws?resumeId=...
func (h *WsHandler) HandleConnection(c *gin.Context) {
	if h.redisClient == nil {
		Error(c, http.StatusServiceUnavailable, "notifications are not available")
		return
	}
	resumeID := c.Query("resumeId")
	if resumeID == "" {
		BadRequest(c, "missing resumeId")
		return
	}
	if _, err := h.store.Snapshot(c.Request.Context(), resumeID); err != nil {
		DomainError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}

	log := h.logger.With(slog.String("resume_id", resumeID), slog.String("client_ip", c.ClientIP()))

	// 订阅在升级之后建立，连接关闭时随 ctx 一起退出
	pubsub := h.redisClient.Subscribe(c.Request.Context(), tasks.NotifyChannel(resumeID))
	defer pubsub.Close()

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error { return readUntilClosed(conn) })
	g.Go(func() error { return forward(ctx, conn, pubsub.Channel()) })
	// 任一循环退出后关闭连接，读循环才能从 ReadMessage 返回
	g.Go(func() error {
		<-ctx.Done()
		writeClose(conn, websocket.CloseGoingAway, "server closing")
		return conn.Close()
	})

	err = g.Wait()
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr):
		log.Info("websocket closed by client", slog.Int("code", closeErr.Code))
	case err != nil && !errors.Is(err, context.Canceled):
		log.Warn("websocket connection dropped", slog.Any("error", err))
	default:
		log.Info("websocket connection closed")
	}
}

// readUntilClosed 丢弃客户端消息，仅靠读循环处理 pong 与断开。
func readUntilClosed(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func forward(ctx context.Context, conn *websocket.Conn, messages <-chan *redis.Message) error {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errSubscriptionClosed
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return err
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
