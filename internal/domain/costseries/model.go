package costseries

import (
	"fmt"
	"sort"
	"time"
)

// Observation represents one calendar day of spend with its per-service breakdown
type Observation struct {
	Date         time.Time          `json:"date"`
	DailyCost    float64            `json:"daily_cost"`
	ServiceCosts map[string]float64 `json:"service_costs,omitempty"`
}

// ServiceCost is a named service contribution to a day's spend
type ServiceCost struct {
	ServiceName string  `json:"service_name"`
	Cost        float64 `json:"cost"`
}

// Validate checks the caller contract on an observation series: costs must be
// non-negative and dates strictly increasing. Gaps between dates are allowed.
func Validate(observations []Observation) error {
	for i, obs := range observations {
		if obs.DailyCost < 0 {
			return fmt.Errorf("observation %d (%s): daily cost must be non-negative, got %.2f",
				i, obs.Date.Format("2006-01-02"), obs.DailyCost)
		}
		for service, cost := range obs.ServiceCosts {
			if cost < 0 {
				return fmt.Errorf("observation %d (%s): service %q cost must be non-negative, got %.2f",
					i, obs.Date.Format("2006-01-02"), service, cost)
			}
		}
		if i > 0 && !observations[i-1].Date.Before(obs.Date) {
			return fmt.Errorf("observation %d (%s): dates must be strictly increasing",
				i, obs.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Costs extracts the daily cost sequence from a series
func Costs(observations []Observation) []float64 {
	costs := make([]float64, len(observations))
	for i, obs := range observations {
		costs[i] = obs.DailyCost
	}
	return costs
}

// TopServices returns up to limit services for the day, ordered by descending cost
func (o Observation) TopServices(limit int) []ServiceCost {
	services := make([]ServiceCost, 0, len(o.ServiceCosts))
	for name, cost := range o.ServiceCosts {
		services = append(services, ServiceCost{ServiceName: name, Cost: cost})
	}

	sort.Slice(services, func(i, j int) bool {
		if services[i].Cost != services[j].Cost {
			return services[i].Cost > services[j].Cost
		}
		return services[i].ServiceName < services[j].ServiceName
	})

	if limit > 0 && len(services) > limit {
		services = services[:limit]
	}
	return services
}

// ServicesAbove returns services contributing more than the given share of the
// day's total cost, ordered by descending cost. Share is a fraction in (0,1).
func (o Observation) ServicesAbove(share float64) []ServiceCost {
	if o.DailyCost <= 0 {
		return nil
	}

	var services []ServiceCost
	for name, cost := range o.ServiceCosts {
		if cost/o.DailyCost > share {
			services = append(services, ServiceCost{ServiceName: name, Cost: cost})
		}
	}

	sort.Slice(services, func(i, j int) bool {
		if services[i].Cost != services[j].Cost {
			return services[i].Cost > services[j].Cost
		}
		return services[i].ServiceName < services[j].ServiceName
	})
	return services
}
