package vacation

import "github.com/shopspring/decimal"

// Summary is the entitlement arithmetic shown next to the calendar.
// Remaining goes negative when more days are marked than available.
type Summary struct {
	Entitlement    int `json:"entitlement"`
	Rollover       int `json:"rollover"`
	EffectiveTotal int `json:"effectiveTotal"`
	Used           int `json:"used"`
	Remaining      int `json:"remaining"`
	PercentUsed    int `json:"percentUsed"`
}

// Summarize combines a record with its carryover. r may be nil.
func Summarize(d Data, r *Rollover) Summary {
	s := Summary{Entitlement: d.TotalDays, Used: d.Dates().Len()}
	if r != nil {
		s.Rollover = r.RolloverDays
	}
	s.EffectiveTotal = s.Entitlement + s.Rollover
	s.Remaining = s.EffectiveTotal - s.Used
	if s.EffectiveTotal > 0 {
		s.PercentUsed = int(decimal.NewFromInt(int64(s.Used)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(s.EffectiveTotal))).
			Round(0).
			IntPart())
	}
	return s
}
