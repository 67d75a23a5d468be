package api

import (
	"encoding/json"
	"testing"
)

func TestRatingUnmarshal(t *testing.T) {
	tests := []struct {
		raw       string
		wantValid bool
		wantValue int
	}{
		{`1500`, true, 1500},
		{`1500.9`, true, 1500},
		{`"1500"`, true, 1500},
		{`" 1500 "`, true, 1500},
		{`null`, false, 0},
		{`"abc"`, false, 0},
		{`true`, false, 0},
		{`{"a":1}`, false, 0},
		{`1e20`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var r Rating
			if err := json.Unmarshal([]byte(tt.raw), &r); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if r.Valid != tt.wantValid || r.Value != tt.wantValue {
				t.Errorf("Unmarshal(%s) = %+v, want valid=%v value=%d", tt.raw, r, tt.wantValid, tt.wantValue)
			}
		})
	}
}

func TestRatingPtr(t *testing.T) {
	if (Rating{}).Ptr() != nil {
		t.Error("invalid rating should have nil Ptr")
	}
	if p := (Rating{Value: 42, Valid: true}).Ptr(); p == nil || *p != 42 {
		t.Errorf("Ptr() = %v, want 42", p)
	}
}
