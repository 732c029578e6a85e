// Package httpapi exposes capture status over HTTP: health, metrics and
// the most recently completed frame.
package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/frame"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/observability"
)

var startedAt = time.Now()

// FrameStore holds the last completed frame for the /frame/latest endpoint.
type FrameStore struct {
	mu         sync.RWMutex
	latest     *frame.Sensor
	capturedAt time.Time
}

func (s *FrameStore) Set(fr *frame.Sensor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = fr
	s.capturedAt = time.Now().UTC()
}

func (s *FrameStore) Get() (*frame.Sensor, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.capturedAt, s.latest != nil
}

// NewRouter builds the gin engine with all routes attached.
func NewRouter(store *FrameStore, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Middleware: keep it lean
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log))
	r.Use(observability.RequestMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startedAt).String(),
			"service": "uls24ctl",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/frame/latest", func(c *gin.Context) {
		fr, at, ok := store.Get()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no frame captured yet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"channel":             fr.Channel,
			"dim":                 fr.Dim,
			"gain_mode":           fr.GainMode,
			"integration_time_ms": fr.IntegrationTimeMS,
			"captured_at":         at.Format(time.RFC3339),
			"rows":                fr.Rows(),
		})
	})

	return r
}

// Serve runs the router on addr until the listener fails.
func Serve(addr string, store *FrameStore, log zerolog.Logger) error {
	observability.RegisterMetrics()
	log.Info().Str("addr", addr).Msg("http api listening")
	return NewRouter(store, log).Run(addr)
}
