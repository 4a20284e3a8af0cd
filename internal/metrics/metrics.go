package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamcreate",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamcreate",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamcreate",
		Name:      "rooms_active",
		Help:      "Current number of live rooms",
	})

	sessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamcreate",
		Name:      "sessions_connected",
		Help:      "Current number of connected WebSocket sessions",
	})

	framesBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamcreate",
		Name:      "frames_broadcast_total",
		Help:      "Frames fanned out to room peers",
	}, []string{"type"})

	messagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamcreate",
		Name:      "messages_dropped_total",
		Help:      "Client messages dropped as malformed or unknown",
	})

	roomsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamcreate",
		Name:      "rooms_swept_total",
		Help:      "Rooms evicted by the TTL sweeper",
	})
)

func SetRooms(n int)    { roomsActive.Set(float64(n)) }
func SetSessions(n int) { sessionsConnected.Set(float64(n)) }
func MessageDropped()   { messagesDropped.Inc() }
func RoomsSwept(n int)  { roomsSwept.Add(float64(n)) }

func FramesBroadcast(frameType string, n int) {
	framesBroadcast.WithLabelValues(frameType).Add(float64(n))
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack must pass through so the WebSocket upgrade works behind the
// middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request counts and latency with Prometheus labels.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
