package dashboard

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/climatescope/internal/domain"
)

var (
	// ErrUnknownAction means Dispatch received an action kind it does not handle.
	ErrUnknownAction = errors.New("unknown dashboard action")

	// ErrInvalidAction means the action is missing a required input.
	ErrInvalidAction = errors.New("invalid dashboard action")
)

// Kind names a dashboard interaction.
type Kind string

const (
	KindOptions     Kind = "options"
	KindTrend       Kind = "trend"
	KindMonthly     Kind = "monthly"
	KindCorrelation Kind = "correlation"
	KindChoropleth  Kind = "choropleth"
	KindRanking     Kind = "ranking"
	KindMap         Kind = "map"
	KindReport      Kind = "report"
)

// Kinds lists every action kind Dispatch accepts.
var Kinds = []Kind{
	KindOptions, KindTrend, KindMonthly, KindCorrelation,
	KindChoropleth, KindRanking, KindMap, KindReport,
}

// Action is one dashboard request. Selection is read by trend, monthly and
// report; K is read by ranking.
type Action struct {
	Kind      Kind
	Selection domain.FilterSelection
	K         int
}

// Result carries the view produced for an action. Exactly one view field is
// set, matching Kind.
type Result struct {
	Kind        Kind             `json:"kind"`
	Options     *SelectorOptions `json:"options,omitempty"`
	Trend       *TrendView       `json:"trend,omitempty"`
	Monthly     *MonthlyView     `json:"monthly,omitempty"`
	Correlation *CorrelationView `json:"correlation,omitempty"`
	Choropleth  *ChoroplethView  `json:"choropleth,omitempty"`
	Ranking     *RankingView     `json:"ranking,omitempty"`
	Map         *MapView         `json:"map,omitempty"`
	Report      *ReportView      `json:"report,omitempty"`
}

func (k Kind) known() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

// label bounds the metrics label set for unrecognized kinds.
func (k Kind) label() string {
	if k.known() {
		return string(k)
	}
	return "unknown"
}

func validateSelection(sel domain.FilterSelection) error {
	if sel.Country == "" {
		return fmt.Errorf("%w: country is required", ErrInvalidAction)
	}
	if _, err := domain.ParseMetric(string(sel.Metric)); err != nil {
		return err
	}
	return nil
}
