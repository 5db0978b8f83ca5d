package mockd

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/config"
	"github.com/worldads/adwatch/pkg/ginutil"
	"github.com/worldads/adwatch/pkg/jwt"
	"github.com/worldads/adwatch/pkg/logger"
)

// Server is the local development backend: the whole REST surface the
// client talks to plus the WebSocket fan-out, backed by an in-memory
// store.
type Server struct {
	store    *Store
	hub      *Hub
	tokens   *jwt.Manager
	upgrader websocket.Upgrader
	pongWait time.Duration
	log      zerolog.Logger
}

// NewServer wires a server around a store and hub. The caller runs the
// hub loop.
func NewServer(cfg config.ServerConfig, store *Store, hub *Hub) *Server {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return &Server{
		store:    store,
		hub:      hub,
		pongWait: cfg.PongWait,
		tokens:   jwt.NewManager(cfg.JWTSecret, 24*time.Hour),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
		log: logger.WithComponent("mockd"),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.handleWS)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users", s.createUser)
		v1.POST("/users/login", s.login)
		v1.GET("/users/world/:worldId", s.getUserByWorldID)
		v1.POST("/users/:id/avatar/upload", s.uploadAvatar)

		v1.GET("/advertisements", s.listAds)
		v1.GET("/advertisements/:id", s.getAd)

		v1.GET("/comments/advertisement/:adId", s.listComments)
		v1.POST("/comments", s.createComment)
		v1.POST("/comments/with-media", s.createCommentWithMedia)

		v1.GET("/comments/reply/comment/:commentId", s.listReplies)
		v1.POST("/comments/reply", s.createReply)
		v1.POST("/comments/reply/with-media", s.createReplyWithMedia)

		v1.POST("/comments/reaction", s.createReaction)
		v1.DELETE("/comments/reaction", s.deleteReaction)
		v1.GET("/comments/reaction/user", s.getUserReaction)
		v1.GET("/comments/reactions/advertisement/:adId/user/:worldId", s.listUserReactionsForAd)

		v1.POST("/rewards", s.createReward)
		v1.GET("/rewards/user/:worldId", s.listUserRewards)

		v1.POST("/favorites", s.createFavorite)
		v1.GET("/favorites/user/:worldId", s.listUserFavorites)
	}

	return r
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(s.hub, conn, s.pongWait)
	s.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}

func pageParams(c *gin.Context) (page, limit int) {
	return ginutil.QueryIntClamped(c, "page", 1, 1),
		ginutil.QueryIntClamped(c, "limit", 10, 1)
}
