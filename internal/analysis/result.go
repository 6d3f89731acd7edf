package analysis

import (
	"time"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/qpv"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/zrr"
)

// Query kinds.
const (
	KindSIRET   = "siret"
	KindAddress = "adresse"
)

// Result is the eligibility answer for one query. JSON keys keep the
// French vocabulary of the source datasets so consumers see the official
// terms.
type Result struct {
	ID          string         `json:"id"`
	Kind        string         `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	CompanyName string         `json:"nom_entreprise,omitempty"`
	Address     string         `json:"adresse"`
	CityCode    string         `json:"code_commune"`
	ZRR         zrr.Status     `json:"in_zrr"`
	ZRRLabel    string         `json:"zrr_label"`
	QPV         *qpv.Proximity `json:"qpv_data"`
}
