package app

import "estates_console/internal/domain"

type ListingStats struct {
	Total      int                     `json:"total"`
	ByStatus   map[domain.Status]int   `json:"byStatus"`
	ByCategory map[domain.Category]int `json:"byCategory"`
	Rentals    int                     `json:"rentals"`
	ForSale    int                     `json:"forSale"`
	TotalValue float64                 `json:"totalValue"`
	AvgPrice   float64                 `json:"avgPrice"`
}

type CallStats struct {
	Total       int     `json:"total"`
	Succeeded   int     `json:"succeeded"`
	SuccessRate float64 `json:"successRate"` // 0..1
	AvgDuration float64 `json:"avgDurationSeconds"`
	TotalCost   float64 `json:"totalCost"`
}

type Summary struct {
	Listings ListingStats `json:"listings"`
	Calls    CallStats    `json:"calls"`
}

// Summarize aggregates the analytics view. Every enumerated status and
// category is present in the maps, zero when unused.
func Summarize(ls []domain.Listing, calls []domain.Call) Summary {
	st := ListingStats{
		Total:      len(ls),
		ByStatus:   make(map[domain.Status]int, len(domain.Statuses)),
		ByCategory: make(map[domain.Category]int, len(domain.Categories)),
	}
	for _, s := range domain.Statuses {
		st.ByStatus[s] = 0
	}
	for _, c := range domain.Categories {
		st.ByCategory[c] = 0
	}
	for _, l := range ls {
		st.ByStatus[l.Status]++
		st.ByCategory[l.Category]++
		if l.IsRental {
			st.Rentals++
		} else {
			st.ForSale++
		}
		st.TotalValue += l.Price
	}
	if st.Total > 0 {
		st.AvgPrice = st.TotalValue / float64(st.Total)
	}

	cs := CallStats{Total: len(calls)}
	var dur float64
	for _, c := range calls {
		if c.Succeeded() {
			cs.Succeeded++
		}
		dur += c.Duration
		cs.TotalCost += c.Cost
	}
	if cs.Total > 0 {
		cs.SuccessRate = float64(cs.Succeeded) / float64(cs.Total)
		cs.AvgDuration = dur / float64(cs.Total)
	}
	return Summary{Listings: st, Calls: cs}
}
