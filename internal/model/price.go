package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Price is a monetary amount in the plan's local currency.
//
// Catalog and imported documents are not trusted to carry a number here:
// strings are coerced, and anything that is not a finite number decodes as 0.
type Price float64

// Float returns p as a float64, mapping NaN and ±Inf to 0.
func (p Price) Float() float64 {
	f := float64(p)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// MarshalJSON never emits NaN, which encoding/json would reject.
func (p Price) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, p.Float(), 'f', -1, 64), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	var f float64
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*p = 0
			return nil
		}
		f = ParsePrice(s)
	} else if err := json.Unmarshal(data, &f); err != nil {
		f = 0
	}

	*p = Price(f).normalized()
	return nil
}

func (p Price) normalized() Price {
	return Price(p.Float())
}

// ParsePrice coerces free text such as "1,200" or " 350 " to a number.
// Unparsable input yields 0.
func ParsePrice(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
