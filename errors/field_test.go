package errors

import (
	"reflect"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	// Declared upfront so that DeepEqual can compare instances.
	var (
		unorderedSignerErr = Field("Members.1.Signer", ErrInput, "members must be in strictly ascending order")
		emptySignerErr     = Field("Members.2.Signer", ErrEmpty, "")
		zeroPowerErr       = Field("Members.2.Power", ErrInput, "")
		overflowPowerErr   = Field("Members.2.Power", ErrOverflow, "")
		zeroAmountErr      = Field("Action.Amount", ErrInput, "amount must be positive")
		expiredErr         = Field("Action.Deadline", ErrExpired, "")
		actionErr          = Field("Action", Append(zeroAmountErr, expiredErr), "invalid withdrawal")
		rewrappedAmountErr = Field("Action.Amount", zeroAmountErr, "outer")
		membersErr         = Append(unorderedSignerErr, Append(emptySignerErr, zeroPowerErr))
	)

	cases := map[string]struct {
		Err   error
		Field string
		Want  []error
	}{
		"single member error": {
			Err:   unorderedSignerErr,
			Field: "Members.1.Signer",
			Want:  []error{unorderedSignerErr},
		},
		"only the requested member is returned": {
			Err:   membersErr,
			Field: "Members.2.Signer",
			Want:  []error{emptySignerErr},
		},
		"member index is part of the name": {
			Err:   membersErr,
			Field: "Members.0.Signer",
			Want:  nil,
		},
		"all errors of the same field": {
			Err:   Append(zeroPowerErr, overflowPowerErr),
			Field: "Members.2.Power",
			Want:  []error{zeroPowerErr, overflowPowerErr},
		},
		"parent field holding a multi error": {
			Err:   actionErr,
			Field: "Action",
			Want:  []error{actionErr},
		},
		"nested field inside a parent field": {
			Err:   actionErr,
			Field: "Action.Deadline",
			Want:  []error{expiredErr},
		},
		"wrapped withdrawal error": {
			Err:   Wrap(Wrap(actionErr, "verify"), "withdraw"),
			Field: "Action.Amount",
			Want:  []error{zeroAmountErr},
		},
		"wrapped withdrawal error without match": {
			Err:   Wrap(actionErr, "withdraw"),
			Field: "Action.Receiver",
			Want:  nil,
		},
		"outermost error of a field wins": {
			Err:   rewrappedAmountErr,
			Field: "Action.Amount",
			Want:  []error{rewrappedAmountErr},
		},
		"different outer field is skipped": {
			Err:   Field("Action", Field("Action.Asset", zeroAmountErr, ""), ""),
			Field: "Action.Amount",
			Want:  []error{zeroAmountErr},
		},
		"plain error has no fields": {
			Err:   ErrUnauthorized,
			Field: "Members.0.Signer",
			Want:  nil,
		},
		"nil error": {
			Err:   nil,
			Field: "Action.Amount",
			Want:  nil,
		},
		"mixed registration and withdrawal errors": {
			Err: Wrap(Append(
				Wrap(unorderedSignerErr, "register"),
				Wrap(zeroAmountErr, "withdraw"),
				Wrap(emptySignerErr, "register"),
			), "batch"),
			Field: "Members.1.Signer",
			Want:  []error{unorderedSignerErr},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := FieldErrors(tc.Err, tc.Field)
			if !reflect.DeepEqual(tc.Want, got) {
				t.Logf("want: %#v", tc.Want)
				t.Logf(" got: %#v", got)
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestFieldPath(t *testing.T) {
	cases := map[string]struct {
		segments []interface{}
		want     string
	}{
		"member signer": {
			segments: []interface{}{"Members", 2, "Signer"},
			want:     "Members.2.Signer",
		},
		"role entry": {
			segments: []interface{}{"Roles", 0},
			want:     "Roles.0",
		},
		"single segment": {
			segments: []interface{}{"Amount"},
			want:     "Amount",
		},
		"no segments": {
			want: "",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := FieldPath(tc.segments...); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFieldMessage(t *testing.T) {
	err := Field("Action.Amount", ErrInput, "got %d", 0)
	want := `field "Action.Amount": got 0: invalid input`
	if got := err.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if Field("Action.Amount", nil, "") != nil {
		t.Fatal("nil error must not be wrapped")
	}
}
