package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

// Summarize aggregates completed payments into one summary anchored at windowStart.
// The result does not depend on the order of payments.
func Summarize(payments []models.Payment, windowStart models.Date) models.DailySalesSummary {
	var totalCents, tipCents int64
	count := 0
	for _, p := range payments {
		if !p.Completed() {
			continue
		}
		totalCents += p.TotalCents
		tipCents += p.TipCents
		count++
	}
	return models.DailySalesSummary{
		Date:             windowStart,
		GrossSales:       models.CentsToAmount(totalCents),
		Tips:             models.CentsToAmount(tipCents),
		NetSales:         models.CentsToAmount(totalCents - tipCents),
		TransactionCount: count,
		Status:           models.SummaryOK,
	}
}

// RankDays orders days descending by key, newest date first on ties. Unavailable
// days and days with a zero key are dropped; at most limit entries are returned.
func RankDays(days []models.DailySalesSummary, limit int, key models.RankKey) []models.DailySalesSummary {
	ranked := make([]models.DailySalesSummary, 0, len(days))
	for _, d := range days {
		if !d.Available() || rankValue(d, key).IsZero() {
			continue
		}
		ranked = append(ranked, d)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := rankValue(ranked[i], key), rankValue(ranked[j], key)
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return ranked[i].Date.After(ranked[j].Date.Time)
	})

	if limit < 0 {
		limit = 0
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func rankValue(d models.DailySalesSummary, key models.RankKey) decimal.Decimal {
	if key == models.RankByGrossSales {
		return d.GrossSales
	}
	return decimal.NewFromInt(int64(d.TransactionCount))
}

// BucketByDay groups completed payments by their day of month in loc. Days
// without a completed payment have no key.
func BucketByDay(payments []models.Payment, loc *time.Location) map[int]models.DailySalesSummary {
	grouped := make(map[int][]models.Payment)
	dates := make(map[int]models.Date)
	for _, p := range payments {
		if !p.Completed() {
			continue
		}
		local := p.CreatedAt.In(loc)
		day := local.Day()
		grouped[day] = append(grouped[day], p)
		dates[day] = models.DateOf(local)
	}

	out := make(map[int]models.DailySalesSummary, len(grouped))
	for day, list := range grouped {
		out[day] = Summarize(list, dates[day])
	}
	return out
}

// BucketByHour returns 24 buckets indexed by the local hour of each completed payment.
func BucketByHour(payments []models.Payment, loc *time.Location) []models.HourlyBucket {
	var cents [24]int64
	buckets := make([]models.HourlyBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, p := range payments {
		if !p.Completed() {
			continue
		}
		h := p.CreatedAt.In(loc).Hour()
		buckets[h].Count++
		cents[h] += p.TotalCents
	}
	for h := range buckets {
		buckets[h].Amount = models.CentsToAmount(cents[h])
	}
	return buckets
}

// RankCustomers aggregates completed payments per customer id. Payments without
// a customer are ignored. Ordering: total spent desc, visits desc, id asc.
func RankCustomers(payments []models.Payment, limit int) []models.TopCustomer {
	type tally struct {
		cents  int64
		visits int
	}
	byID := make(map[string]*tally)
	for _, p := range payments {
		if !p.Completed() || p.CustomerID == "" {
			continue
		}
		t, ok := byID[p.CustomerID]
		if !ok {
			t = &tally{}
			byID[p.CustomerID] = t
		}
		t.cents += p.TotalCents
		t.visits++
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := byID[ids[i]], byID[ids[j]]
		if a.cents != b.cents {
			return a.cents > b.cents
		}
		if a.visits != b.visits {
			return a.visits > b.visits
		}
		return ids[i] < ids[j]
	})

	if limit < 0 {
		limit = 0
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]models.TopCustomer, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TopCustomer{
			ID:         id,
			TotalSpent: models.CentsToAmount(byID[id].cents),
			VisitCount: byID[id].visits,
		})
	}
	return out
}

// NamedOnly drops customers whose identity could not be resolved. It is a
// presentation filter; rankings themselves always keep those entries.
func NamedOnly(customers []models.TopCustomer) []models.TopCustomer {
	out := make([]models.TopCustomer, 0, len(customers))
	for _, c := range customers {
		if c.Named() {
			out = append(out, c)
		}
	}
	return out
}

// CalendarDays lists the calendar's populated days in day order.
func CalendarDays(cal models.MonthlyCalendar) []models.DailySalesSummary {
	keys := make([]int, 0, len(cal.Days))
	for day := range cal.Days {
		keys = append(keys, day)
	}
	sort.Ints(keys)
	out := make([]models.DailySalesSummary, 0, len(keys))
	for _, day := range keys {
		out = append(out, cal.Days[day])
	}
	return out
}
