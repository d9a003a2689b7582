package custody

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/iov-one/custody/errors"
)

func TestFractionUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantFrac Fraction
		wantErr  bool
	}{
		"integer human format number": {
			raw:      `"1"`,
			wantFrac: Fraction{Numerator: 1, Denominator: 1},
		},
		"human readable format": {
			raw:      `"2/3"`,
			wantFrac: Fraction{Numerator: 2, Denominator: 3},
		},
		"human readable format, too many separators": {
			raw:     `"1/2/3"`,
			wantErr: true,
		},
		"human readable format, floating point number": {
			raw:     `"1/3.3"`,
			wantErr: true,
		},
		"human readable format, signed number": {
			raw:     `"-1"`,
			wantErr: true,
		},
		"verbose format": {
			raw:      `{"numerator": 3, "denominator": 3}`,
			wantFrac: Fraction{Numerator: 3, Denominator: 3},
		},
		"random string characters": {
			raw:     `"asdlkhsdalhksda"`,
			wantErr: true,
		},
		"number is not acceptable": {
			raw:     `12345`,
			wantErr: true,
		},
		"whitespace is irrelevant for human format": {
			raw:      `"\t 3 / \t 2 "`,
			wantFrac: Fraction{Numerator: 3, Denominator: 2},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got Fraction
			err := json.Unmarshal([]byte(tc.raw), &got)
			gotErr := err != nil
			if tc.wantErr != gotErr {
				t.Fatalf("want error=%v, got %v", tc.wantErr, err)
			}
			if err == nil && !reflect.DeepEqual(got, tc.wantFrac) {
				t.Fatalf("want %+v, got %+v", tc.wantFrac, got)
			}
		})
	}
}

func TestFractionValidate(t *testing.T) {
	cases := map[string]struct {
		frac    Fraction
		wantErr *errors.Error
	}{
		"full power": {
			frac: Fraction{Numerator: 3, Denominator: 3},
		},
		"majority": {
			frac: Fraction{Numerator: 2, Denominator: 3},
		},
		"zero denominator": {
			frac:    Fraction{Numerator: 1},
			wantErr: errors.ErrState,
		},
		"zero numerator": {
			frac:    Fraction{Denominator: 3},
			wantErr: errors.ErrState,
		},
		"greater than one": {
			frac:    Fraction{Numerator: 4, Denominator: 3},
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.frac.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestFractionNormalize(t *testing.T) {
	got := Fraction{Numerator: 6, Denominator: 9}.Normalize()
	if want := (Fraction{Numerator: 2, Denominator: 3}); got != want {
		t.Fatalf("want %v, got %v", want, got)
	}
	if s := got.String(); s != "2/3" {
		t.Fatalf("unexpected string: %q", s)
	}
}
