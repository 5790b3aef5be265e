package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "loipen-tracker/internal/errors"
)

// DieselTank is one of the operator's fuel tanks.
type DieselTank string

const (
	TankNidfurn    DieselTank = "Nidfurn"
	TankHaetzingen DieselTank = "Haetzingen"
)

var tankLabels = map[DieselTank]string{
	TankNidfurn:    "Tank Nidfurn",
	TankHaetzingen: "Tank Hätzingen",
}

// AllDieselTanks returns the tanks in display order.
func AllDieselTanks() []DieselTank {
	return []DieselTank{TankNidfurn, TankHaetzingen}
}

func (t DieselTank) IsValid() bool {
	_, ok := tankLabels[t]
	return ok
}

// Label returns the name painted on the tank.
func (t DieselTank) Label() string {
	if label, ok := tankLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseDieselTank accepts the tank name with or without the "Tank" prefix,
// case-insensitively. "Hatzingen" is accepted for keyboards without umlauts.
func ParseDieselTank(s string) (DieselTank, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	needle = strings.TrimSpace(strings.TrimPrefix(needle, "tank"))
	if needle == "" {
		return "", apperrors.NewInvalidInputError("tank", s, "tank is required")
	}
	for _, t := range AllDieselTanks() {
		if needle == strings.ToLower(string(t)) || "tank "+needle == strings.ToLower(t.Label()) {
			return t, nil
		}
	}
	if needle == "hatzingen" {
		return TankHaetzingen, nil
	}
	return "", apperrors.NewInvalidInputError("tank", s, "unknown tank")
}

// DieselEntry is one refuelling from a tank, in litres.
type DieselEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Date      time.Time  `json:"date"`
	Tank      DieselTank `json:"tank"`
	Liters    float64    `json:"liters"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Receipt points at an uploaded receipt image in the receipt bucket.
type Receipt struct {
	Key      string `json:"key"`
	FileName string `json:"file_name,omitempty"`
}

// Expense is a receipt handed in for reimbursement. The amount is optional
// because the receipt itself shows it.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Amount      *float64  `json:"amount,omitempty"`
	Receipt     Receipt   `json:"receipt"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CashTaking is the day-ticket money a worker collected, with an optional
// photo of the cash box slip.
type CashTaking struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Receipt     *Receipt  `json:"receipt,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoundAmount rounds francs and litres to two decimals.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders francs or litres with two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// LitersByTank sums the litres per tank. Tanks without refuels are zero.
func LitersByTank(entries []DieselEntry) map[DieselTank]float64 {
	totals := make(map[DieselTank]float64, len(tankLabels))
	for _, t := range AllDieselTanks() {
		totals[t] = 0
	}
	for _, e := range entries {
		totals[e.Tank] = RoundAmount(totals[e.Tank] + e.Liters)
	}
	return totals
}

// SumExpenses adds up the expenses that carry an amount.
func SumExpenses(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		if e.Amount != nil {
			total += *e.Amount
		}
	}
	return RoundAmount(total)
}

// SumCashTakings adds up the collected day-ticket money.
func SumCashTakings(takings []CashTaking) float64 {
	var total float64
	for _, c := range takings {
		total += c.Amount
	}
	return RoundAmount(total)
}
