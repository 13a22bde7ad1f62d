package web

import (
	"net/http"
	"time"

	"burndown-gen/internal/burndown"
	"burndown-gen/internal/issue"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server exposes the generated chart and a JSON recompute endpoint over HTTP.
// The grouping snapshot is immutable after construction, so handlers can run
// concurrently without locking.
type Server struct {
	engine        *gin.Engine
	groups        map[string]*issue.StoryGroup
	pipeline      burndown.Pipeline
	defaultSprint string
	chartHTML     string
}

// NewServer builds the router around an already-mapped grouping snapshot.
func NewServer(groups map[string]*issue.StoryGroup, pipeline burndown.Pipeline, defaultSprint, chartHTML string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("m", c.Request.Method).
			Str("p", c.FullPath()).
			Int("s", c.Writer.Status()).
			Dur("d", time.Since(start)).
			Msg("http")
	})

	s := &Server{
		engine:        engine,
		groups:        groups,
		pipeline:      pipeline,
		defaultSprint: defaultSprint,
		chartHTML:     chartHTML,
	}

	engine.GET("/", s.chart)
	engine.GET("/healthz", s.healthz)
	engine.GET("/api/sprints", s.sprints)
	engine.GET("/api/burndown", s.burndown)

	return s
}

// Run blocks serving HTTP on the given address.
func (s *Server) Run(addr string) error {
	log.Info().Str("addr", addr).Msg("Serving burndown chart")
	return s.engine.Run(addr)
}

func (s *Server) chart(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.chartHTML))
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) sprints(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sprints": burndown.ListSprints(s.groups, s.defaultSprint),
	})
}

// burndown recomputes a single series on demand. An empty series means "no
// data for the selected parameters", not a failure.
func (s *Server) burndown(c *gin.Context) {
	alg, err := burndown.ParseAlgorithm(c.DefaultQuery("algorithm", "2"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end := burndown.DefaultRange(time.Now())
	if raw := c.Query("start"); raw != "" {
		if start, err = burndown.ParseDay(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
			return
		}
	}
	if raw := c.Query("end"); raw != "" {
		if end, err = burndown.ParseDay(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
			return
		}
	}

	sprint := c.Query("sprint")
	if sprint == "" {
		sprint = s.defaultSprint
	}

	points := burndown.Calculate(alg, s.groups, burndown.DateRange(start, end), sprint, s.pipeline)
	c.JSON(http.StatusOK, gin.H{
		"algorithm": alg.String(),
		"sprint":    sprint,
		"points":    points,
	})
}
