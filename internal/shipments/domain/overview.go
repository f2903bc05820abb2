package domain

import (
	"time"

	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/format"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/metrics"
)

// Summarize builds the console header. A shipment is overdue when its ETA has
// passed and it is neither delivered nor returned.
func Summarize(all []dash.Record[Shipment], now time.Time) Overview {
	o := Overview{
		Total:     len(all),
		ByStatus:  metrics.CountBy(all, func(r dash.Record[Shipment]) string { return r.Data.Status }),
		ByCarrier: metrics.CountBy(all, func(r dash.Record[Shipment]) string { return r.Data.Carrier }),
		Spend:     map[string]string{},
	}

	totals := map[string]float64{}
	for _, r := range all {
		totals[r.Data.Currency] += r.Data.Cost
		if r.Data.ETA != nil && r.Data.ETA.Before(now) &&
			r.Data.Status != StatusDelivered && r.Data.Status != StatusReturned {
			o.Overdue++
		}
	}
	for code, amount := range totals {
		if s, err := format.Currency(amount, code); err == nil {
			o.Spend[code] = s
		}
	}
	return o
}
