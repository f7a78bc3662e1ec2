package mainboilerplate

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// DiagnosticsConfig configures pull-based application metrics.
type DiagnosticsConfig struct {
	Addr string `long:"addr" env:"ADDR" description:"Address at which to serve /debug/metrics (disabled if empty)"`
}

// InitDiagnostics begins serving Prometheus metrics at /debug/metrics of
// the configured address, if any.
func InitDiagnostics(cfg DiagnosticsConfig) {
	if cfg.Addr == "" {
		return
	}
	var mux = http.NewServeMux()
	mux.Handle("/debug/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
			log.WithFields(log.Fields{"addr": cfg.Addr, "err": err}).Error("diagnostics server failed")
		}
	}()
}

// Must panics if |err| is non-nil, supplying |msg| and |extra| as
// formatter and fields of the generated panic.
func Must(err error, msg string, extra ...interface{}) {
	if err == nil {
		return
	}
	var f = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		f[extra[i].(string)] = extra[i+1]
	}
	log.WithFields(f).Panic(msg)
}
