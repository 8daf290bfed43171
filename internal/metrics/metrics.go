package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

var (
	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tictactoe_moves_total",
		Help: "Move attempts by outcome",
	}, []string{"outcome"})

	jumpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tictactoe_history_jumps_total",
		Help: "Jumps to a history step",
	})

	orderTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tictactoe_order_toggles_total",
		Help: "Move list order changes by resulting order",
	}, []string{"order"})

	gamesWonTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tictactoe_games_won_total",
		Help: "Moves that completed a winning line, by mark",
	}, []string{"mark"})

	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tictactoe_sessions_created_total",
		Help: "Game sessions started",
	})
)

// Recorder is the metrics sink used by the game use case.
type Recorder interface {
	MoveAttempted(accepted bool)
	GameWon(mark entity.Mark)
	Jumped()
	OrderChanged(ascending bool)
	SessionCreated()
}

type prometheusRecorder struct{}

func NewRecorder() Recorder {
	return prometheusRecorder{}
}

func (prometheusRecorder) MoveAttempted(accepted bool) {
	outcome := OutcomeRejected
	if accepted {
		outcome = OutcomeAccepted
	}

	movesTotal.WithLabelValues(outcome).Inc()
}

func (prometheusRecorder) GameWon(mark entity.Mark) {
	gamesWonTotal.WithLabelValues(string(mark)).Inc()
}

func (prometheusRecorder) Jumped() {
	jumpsTotal.Inc()
}

func (prometheusRecorder) OrderChanged(ascending bool) {
	order := "descending"
	if ascending {
		order = "ascending"
	}

	orderTogglesTotal.WithLabelValues(order).Inc()
}

func (prometheusRecorder) SessionCreated() {
	sessionsCreatedTotal.Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
