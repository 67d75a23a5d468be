package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Rating is a leniently decoded rating value. Numbers and numeric strings
// are accepted; anything else decodes to an invalid rating instead of
// failing the whole payload.
type Rating struct {
	Value int
	Valid bool
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	*r = Rating{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, ok := CoerceRating(s); ok {
			*r = Rating{Value: v, Valid: true}
		}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	if v, ok := CoerceRating(n.String()); ok {
		*r = Rating{Value: v, Valid: true}
	}
	return nil
}

func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.Value)), nil
}

func (r Rating) Ptr() *int {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}

// CoerceRating converts integer text to a rating. Decimal numbers are
// truncated toward zero; anything else is rejected.
func CoerceRating(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
