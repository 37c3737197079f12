package analytics

import (
	"cmp"
	"slices"
)

// TopSalesLimit caps the top sales performance list.
const TopSalesLimit = 5

// UserRow is the slice of an end-user record the rollup reads.
type UserRow struct {
	ID                string  `db:"id"`
	Package           string  `db:"package"`
	AutomationsCount  int     `db:"automations_count"`
	IsAffiliate       bool    `db:"is_affiliate"`
	OnboardingSalesID *string `db:"onboarding_sales_id"`
	Deleted           bool    `db:"deleted"`
}

type SalesPersonRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Deleted bool   `db:"deleted"`
}

type SalesCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Rollup struct {
	TotalUsers          int            `json:"total_users"`
	TotalAutomations    int            `json:"total_automations"`
	AffiliateCount      int            `json:"affiliate_count"`
	TopSalesPerformance []SalesCount   `json:"top_sales_performance"`
	PackageDistribution map[string]int `json:"package_distribution"`
}

// Aggregate computes the rollup over live users and sales people. Sales
// people without any onboarded live user are left out of the top list.
func Aggregate(users []UserRow, salesPeople []SalesPersonRow) Rollup {
	r := Rollup{
		TopSalesPerformance: []SalesCount{},
		PackageDistribution: map[string]int{},
	}

	onboarded := map[string]int{}
	for _, u := range users {
		if u.Deleted {
			continue
		}
		r.TotalUsers++
		r.TotalAutomations += u.AutomationsCount
		if u.IsAffiliate {
			r.AffiliateCount++
		}
		r.PackageDistribution[u.Package]++
		if u.OnboardingSalesID != nil {
			onboarded[*u.OnboardingSalesID]++
		}
	}

	for _, sp := range salesPeople {
		if sp.Deleted || onboarded[sp.ID] == 0 {
			continue
		}
		r.TopSalesPerformance = append(r.TopSalesPerformance, SalesCount{Name: sp.Name, Count: onboarded[sp.ID]})
	}

	slices.SortFunc(r.TopSalesPerformance, func(a, b SalesCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(r.TopSalesPerformance) > TopSalesLimit {
		r.TopSalesPerformance = r.TopSalesPerformance[:TopSalesLimit]
	}

	return r
}
