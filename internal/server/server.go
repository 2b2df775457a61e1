package server

import (
	"errors"
	"time"

	"github.com/danmuck/fixctl/internal/auth"
	"github.com/danmuck/fixctl/internal/config"
	"github.com/danmuck/fixctl/internal/dictionary"
	"github.com/danmuck/fixctl/internal/observability"
	"github.com/danmuck/fixctl/internal/protocol"
	"github.com/danmuck/fixctl/internal/render"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const metricsSource = "http"

var ErrMessageTooLarge = errors.New("server: message too large")

// Server exposes one decoder over HTTP. The decoder and tables are shared
// read-only by every request.
type Server struct {
	Name            string
	Addr            string
	MaxMessageBytes int64
	Format          render.Format
	Appeared        time.Time

	decoder *protocol.Decoder
	tables  dictionary.Tables
	router  *gin.Engine
	auth    auth.Validator
}

func New(cfg config.Config, decoder *protocol.Decoder, tables dictionary.Tables) (*Server, error) {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	observability.RegisterMetrics()
	observability.RecordDictionary(tables.Fields.Len(), tables.Groups.Len())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	var validator auth.Validator
	if cfg.AuthToken != "" {
		validator = auth.StaticToken{Token: cfg.AuthToken}
	}

	return &Server{
		Name:            cfg.Name,
		Addr:            cfg.Listen,
		MaxMessageBytes: cfg.MaxMessageBytes,
		Format:          format,
		Appeared:        time.Now(),
		decoder:         decoder,
		tables:          tables,
		router:          r,
		auth:            validator,
	}, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Decode runs one instrumented decode.
func (s *Server) Decode(buf []byte) (*protocol.Message, error) {
	if int64(len(buf)) > s.MaxMessageBytes {
		return nil, ErrMessageTooLarge
	}
	start := time.Now()
	msg, err := s.decoder.Decode(buf)
	observability.RecordDecode(metricsSource, msg, err, time.Since(start))
	return msg, err
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	log.Info().
		Str("name", s.Name).
		Str("addr", s.Addr).
		Int("fields", s.tables.Fields.Len()).
		Int("groups", s.tables.Groups.Len()).
		Msg("decode service listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
