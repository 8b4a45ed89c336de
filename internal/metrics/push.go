package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
)

// PhaseDone labels a push that completed every stage.
const PhaseDone = "done"

// PushRecorder holds the gauges describing the last push of each profile.
type PushRecorder struct {
	registry *prometheus.Registry

	success   *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	finish    *prometheus.GaugeVec
	exitCodes *prometheus.GaugeVec
}

// NewPushRecorder creates a recorder with its own registry.
func NewPushRecorder() *PushRecorder {
	r := &PushRecorder{
		registry: prometheus.NewRegistry(),
		success: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deploy",
			Subsystem: "push",
			Name:      "success",
			Help:      "Whether the last push succeeded (1) or failed (0), labeled by the phase reached.",
		}, []string{"node", "profile", "phase"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deploy",
			Subsystem: "push",
			Name:      "duration_seconds",
			Help:      "Wall time of the last push.",
		}, []string{"node", "profile"}),
		finish: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deploy",
			Subsystem: "push",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last push finished.",
		}, []string{"node", "profile"}),
		exitCodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deploy",
			Subsystem: "push",
			Name:      "failed_command_exit_code",
			Help:      "Exit code of the external command that failed the last push.",
		}, []string{"node", "profile", "phase"}),
	}

	r.registry.MustRegister(r.success, r.duration, r.finish, r.exitCodes)

	return r
}

// Observe records one finished push. err is the push result.
func (r *PushRecorder) Observe(target deploy.Target, started, finished time.Time, err error) {
	phase := PhaseDone

	var pushErr *deploy.Error
	if errors.As(err, &pushErr) {
		phase = string(pushErr.Phase())

		if pushErr.ExitCode != nil {
			r.exitCodes.WithLabelValues(target.Node, target.Profile, phase).Set(float64(*pushErr.ExitCode))
		}
	} else if err != nil {
		phase = string(deploy.PhaseResolution)
	}

	value := 0.0
	if err == nil {
		value = 1
	}

	r.success.WithLabelValues(target.Node, target.Profile, phase).Set(value)
	r.duration.WithLabelValues(target.Node, target.Profile).Set(finished.Sub(started).Seconds())
	r.finish.WithLabelValues(target.Node, target.Profile).Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes the metrics in text exposition format.
func (r *PushRecorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
