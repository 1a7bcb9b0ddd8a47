package money

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rhinoxpay/rhinoxcore/common"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tester := []struct {
		Input       string
		Expected    string
		ExpectedErr error
	}{
		{Input: "0", Expected: "0"},
		{Input: "1500", Expected: "1500"},
		{Input: "-3.50", Expected: "-3.5"},
		{Input: "0.00000001", Expected: "0.00000001"},
		{Input: "1e2", Expected: "100"},
		{Input: "", ExpectedErr: ErrInvalidNumber},
		{Input: "12,5", ExpectedErr: ErrInvalidNumber},
		{Input: "NaN.1", ExpectedErr: ErrInvalidNumber},
	}
	for x := range tester {
		a, err := Parse(tester[x].Input)
		if !errors.Is(err, tester[x].ExpectedErr) {
			t.Fatalf("test %d: expected error %v got %v",
				x, tester[x].ExpectedErr, err)
		}
		if err == nil && a.String() != tester[x].Expected {
			t.Fatalf("test %d: expected %q got %q",
				x, tester[x].Expected, a.String())
		}
	}
}

func TestParseErrorIsInvalidInput(t *testing.T) {
	t.Parallel()
	_, err := Parse("bogus")
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected common.ErrInvalidInput, got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	t.Parallel()
	a := MustParse("1500")
	b := MustParse("2")
	if got := a.Mul(b).String(); got != "3000" {
		t.Fatalf("mul: expected 3000 got %s", got)
	}
	if got := a.Add(b).String(); got != "1502" {
		t.Fatalf("add: expected 1502 got %s", got)
	}
	if got := a.Sub(b).String(); got != "1498" {
		t.Fatalf("sub: expected 1498 got %s", got)
	}
	if got := MustParse("-2.5").Abs().String(); got != "2.5" {
		t.Fatalf("abs: expected 2.5 got %s", got)
	}
}

func TestDivHalfEven(t *testing.T) {
	t.Parallel()
	tester := []struct {
		A, B     string
		Scale    int32
		Expected string
	}{
		{A: "1", B: "3", Scale: 2, Expected: "0.33"},
		{A: "2", B: "3", Scale: 2, Expected: "0.67"},
		// ties round to even at the target scale
		{A: "0.125", B: "1", Scale: 2, Expected: "0.12"},
		{A: "0.135", B: "1", Scale: 2, Expected: "0.14"},
		{A: "1000000", B: "833.33", Scale: 2, Expected: "1200"},
		{A: "1", B: "1500", Scale: 8, Expected: "0.00066667"},
	}
	for x := range tester {
		got, err := MustParse(tester[x].A).Div(MustParse(tester[x].B), tester[x].Scale)
		if err != nil {
			t.Fatalf("test %d: %v", x, err)
		}
		if got.String() != tester[x].Expected {
			t.Fatalf("test %d: expected %s got %s",
				x, tester[x].Expected, got.String())
		}
	}
}

func TestDivByZero(t *testing.T) {
	t.Parallel()
	_, err := MustParse("1").Div(Zero, FiatScale)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero got %v", err)
	}
}

func TestReciprocal(t *testing.T) {
	t.Parallel()
	r, err := MustParse("1500").Reciprocal(8)
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "0.00066667" {
		t.Fatalf("expected 0.00066667 got %s", r.String())
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()
	if MustParse("1.0").Cmp(MustParse("1")) != 0 {
		t.Fatal("1.0 should equal 1")
	}
	if !MustParse("-0.00000001").IsNegative() {
		t.Fatal("expected negative")
	}
	if MustParse("0.00").Sign() != 0 {
		t.Fatal("expected zero sign")
	}
	if !MustParse("2").GreaterThan(MustParse("1.99999999")) {
		t.Fatal("expected greater")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(MustParse("1500.50"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"1500.5"` {
		t.Fatalf("expected quoted decimal string, got %s", b)
	}
	var a Amount
	if err := json.Unmarshal([]byte(`"0.00000001"`), &a); err != nil {
		t.Fatal(err)
	}
	if a.String() != "0.00000001" {
		t.Fatalf("unexpected value %s", a.String())
	}
	if err := json.Unmarshal([]byte(`"zzz"`), &a); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestSQLRoundTrip(t *testing.T) {
	t.Parallel()
	v, err := MustParse("42.42").Value()
	if err != nil {
		t.Fatal(err)
	}
	var a Amount
	if err := a.Scan(v); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(MustParse("42.42")) {
		t.Fatalf("unexpected scan result %s", a.String())
	}
	if err := a.Scan([]byte("7")); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(FromInt(7)) {
		t.Fatalf("unexpected byte scan result %s", a.String())
	}
	if err := a.Scan(3.14); err == nil {
		t.Fatal("expected error scanning float64")
	}
}
