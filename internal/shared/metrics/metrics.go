package metrics

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	generationsStarted   = newCounter("generation_started_total", "Total generations started")
	generationsCompleted = newCounter("generation_completed_total", "Total generations completed")
	generationsFailed    = newCounter("generation_failed_total", "Total generations failed")
	generationsFallback  = newCounter("generation_fallback_total", "Total generations served by the local generator")

	providerFailures = newLabeledCounter("provider_failures_total", "Failed provider attempts", "provider")
	providerServed   = newLabeledCounter("provider_served_total", "Generations answered per provider", "provider")

	generationDuration = newHistogram("generation_duration_ms", "Generation duration in milliseconds",
		[]float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000})

	registry = []family{
		generationsStarted, generationsCompleted, generationsFailed, generationsFallback,
		providerFailures, providerServed, generationDuration,
	}
)

func IncGenerationStarted()   { generationsStarted.inc() }
func IncGenerationCompleted() { generationsCompleted.inc() }
func IncGenerationFailed()    { generationsFailed.inc() }

// IncGenerationFallback counts generations answered by the local generator.
func IncGenerationFallback() { generationsFallback.inc() }

// IncProviderFailure counts one failed attempt against provider.
func IncProviderFailure(provider string) { providerFailures.inc(provider) }

// IncProviderServed counts one generation answered by provider.
func IncProviderServed(provider string) { providerServed.inc(provider) }

// ObserveGenerationDurationMs records one generation's wall time. Negative
// values are clamped to zero.
func ObserveGenerationDurationMs(ms float64) {
	generationDuration.observe(max(ms, 0))
}

// ProviderFailures returns the failures recorded for provider.
func ProviderFailures(provider string) uint64 { return providerFailures.get(provider) }

// SinceMillis is the time since start in fractional milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// Handler serves every registered family in Prometheus text exposition format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(Render()))
	}
}

// Render writes every registered family in registration order.
func Render() string {
	var buf bytes.Buffer
	for _, f := range registry {
		f.writeTo(&buf)
	}
	return buf.String()
}
