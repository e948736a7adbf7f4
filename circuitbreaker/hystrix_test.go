package circuitbreaker_test

import (
	stdlog "log"
	"os"
	"testing"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/go-kit/log"

	"github.com/go-kit/cmdrpc/circuitbreaker"
)

func TestHystrix(t *testing.T) {
	logger := log.NewLogfmtLogger(os.Stderr)
	stdlog.SetOutput(log.NewStdlibAdapter(logger))

	const (
		commandName   = "my-endpoint"
		errorPercent  = 5
		maxConcurrent = 1000
	)
	hystrix.ConfigureCommand(commandName, hystrix.CommandConfig{
		ErrorPercentThreshold: errorPercent,
		MaxConcurrentRequests: maxConcurrent,
	})

	var (
		breaker          = circuitbreaker.Hystrix[string, string](commandName)
		primeWith        = hystrix.DefaultVolumeThreshold * 2
		shouldPass       = func(n int) bool { return (float64(n) / float64(primeWith+n)) <= (float64(errorPercent-1) / 100.0) }
		openCircuitError = hystrix.ErrCircuitOpen
	)
	testFailingEndpoint(t, breaker, primeWith, shouldPass, openCircuitError)
}
