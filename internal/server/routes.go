package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/fixctl/internal/auth"
	"github.com/danmuck/fixctl/internal/protocol"
	"github.com/danmuck/fixctl/internal/protocol/schema"
	"github.com/danmuck/fixctl/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// HeaderTruncated is set on decode responses whose input ended mid-segment.
const HeaderTruncated = "X-Fix-Truncated"

type FieldInfo struct {
	Tag     schema.TagID   `json:"tag"`
	Name    string         `json:"name"`
	Known   bool           `json:"known"`
	Count   bool           `json:"count_tag"`
	Group   *schema.TagID  `json:"group,omitempty"`
	Members []schema.TagID `json:"members,omitempty"`
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   s.decoder != nil,
			"fields":  s.tables.Fields.Len(),
			"groups":  s.tables.Groups.CountTags(),
			"service": s.Name,
			"version": version,
		})
	})

	s.router.GET("/fields/:tag", func(c *gin.Context) {
		raw, err := strconv.ParseUint(c.Param("tag"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tag must be an unsigned 32-bit integer"})
			return
		}
		c.JSON(http.StatusOK, s.FieldInfo(schema.TagID(raw)))
	})

	if s.auth != nil {
		s.router.POST("/decode", auth.Middleware(s.auth), s.handleDecode)
	} else {
		s.router.POST("/decode", s.handleDecode)
	}
}

func (s *Server) FieldInfo(tag schema.TagID) FieldInfo {
	name, known := s.tables.Fields.LookupFieldName(tag)
	if !known {
		name = schema.UnknownName(tag)
	}
	info := FieldInfo{Tag: tag, Name: name, Known: known}
	if owner, ok := s.tables.Groups.Owner(tag); ok {
		info.Group = &owner
	}
	if s.tables.Groups.IsCountTag(tag) {
		info.Count = true
		info.Members, _ = s.tables.Groups.LookupGroupMembers(tag)
	}
	return info
}

func (s *Server) handleDecode(c *gin.Context) {
	format := s.Format
	if raw := c.Query("format"); raw != "" {
		f, err := render.ParseFormat(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		format = f
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxMessageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": ErrMessageTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := s.Decode(body)
	if err != nil {
		var de *protocol.DecodeError
		if errors.As(err, &de) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "offset": de.Offset})
			return
		}
		if errors.Is(err, ErrMessageTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out, err := render.Marshal(format, msg)
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("render decoded message failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if msg.Truncated {
		c.Header(HeaderTruncated, "true")
	}
	c.Data(http.StatusOK, format.ContentType(), out)
}
