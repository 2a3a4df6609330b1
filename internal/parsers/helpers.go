package parsers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// number decodes JSON numbers, numeric strings and null. ccusage has emitted
// all three for token and cost fields across releases.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f := ParseFloat(s)
		if f == nil {
			*n = number{}
			return nil
		}
		*n = number{value: *f, set: true}
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = number{value: f, set: true}
	return nil
}

func (n number) Int() int64 { return int64(n.value) }

func ParseFloat(val string) *float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

// resolveCost picks the first non-zero of totalCost and cost, else 0.
func resolveCost(totalCost, cost number) float64 {
	if totalCost.set && totalCost.value != 0 {
		return totalCost.value
	}
	if cost.set {
		return cost.value
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
