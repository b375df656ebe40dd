package domain

import "time"

// ExchangeSnapshot holds rates from one base currency
type ExchangeSnapshot struct {
	Base        string             `json:"base"`
	Rates       map[string]float64 `json:"rates"`
	RetrievedAt time.Time          `json:"retrievedAt"`
	NextUpdate  *time.Time         `json:"nextUpdate,omitempty"`
}

// Rate returns the rate to a target currency
func (s *ExchangeSnapshot) Rate(target string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	r, ok := s.Rates[target]
	return r, ok
}

// Conversion is the result of converting an amount between two currencies
type Conversion struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	Amount      float64   `json:"amount"`
	Rate        float64   `json:"rate"`
	Result      float64   `json:"result"`
	RetrievedAt time.Time `json:"retrievedAt"`
}

// CurrencyInfo names a currency the exchange provider supports
type CurrencyInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
