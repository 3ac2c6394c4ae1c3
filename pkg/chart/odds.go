package chart

// SignOdds is the share of samples in which the Sun was in Sign.
type SignOdds struct {
	Sign    string  `json:"sign"`
	Percent float64 `json:"percent"`
}

// SunSignOdds aggregates the Sun's sign over a series of charts sampled
// across a time window. Signs are reported in first-seen order. Responses
// without a chart still count toward the total but contribute no sign.
func SunSignOdds(samples []*Response) []SignOdds {
	if len(samples) == 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, r := range samples {
		sign := r.SunSign()
		if sign == "" {
			continue
		}
		if counts[sign] == 0 {
			order = append(order, sign)
		}
		counts[sign]++
	}

	odds := make([]SignOdds, 0, len(order))
	for _, sign := range order {
		odds = append(odds, SignOdds{
			Sign:    sign,
			Percent: float64(counts[sign]) / float64(len(samples)) * 100,
		})
	}
	return odds
}
