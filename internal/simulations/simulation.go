package simulations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

// ErrNotFound matches a 404 from the simulations resource.
var ErrNotFound = errors.New("simulations: not found")

// ID identifies a simulation on the backend. The backend may use numeric or
// string identifiers; both decode into an ID.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("simulation id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Simulation is a recorded conversion owned by the backend.
type Simulation struct {
	ID        ID              `json:"id"`
	Currency  currency.Code   `json:"moeda"`
	Amount    decimal.Decimal `json:"valor_brl"`
	Converted decimal.Decimal `json:"valor_convertido"`
	Rate      decimal.Decimal `json:"cotacao"`
}

// Input is the body sent on create and update.
type Input struct {
	Currency  currency.Code
	Amount    decimal.Decimal
	Converted decimal.Decimal
	Rate      decimal.Decimal
}

// MarshalJSON writes amounts as JSON numbers, the shape the backend stores.
func (in Input) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Currency  currency.Code `json:"moeda"`
		Amount    json.Number   `json:"valor_brl"`
		Converted json.Number   `json:"valor_convertido"`
		Rate      json.Number   `json:"cotacao"`
	}{
		Currency:  in.Currency,
		Amount:    json.Number(in.Amount.String()),
		Converted: json.Number(in.Converted.String()),
		Rate:      json.Number(in.Rate.String()),
	})
}

// StatusError reports a non-2xx response from the simulations resource.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// Filter keeps simulations in code; an empty code keeps everything.
func Filter(list []Simulation, code currency.Code) []Simulation {
	if code == "" {
		return list
	}
	out := make([]Simulation, 0, len(list))
	for _, s := range list {
		if strings.EqualFold(string(s.Currency), string(code)) {
			out = append(out, s)
		}
	}
	return out
}
