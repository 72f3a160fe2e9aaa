package rfc9111

import (
	"testing"
	"time"
)

func TestToDeltaSeconds(t *testing.T) {
	fiveSeconds := 5 * time.Second
	if s := toDeltaSeconds(fiveSeconds); s != "5" {
		t.Fatalf("Delta seconds is %s", s)
	}
	if s := toDeltaSeconds(-time.Second); s != "0" {
		t.Fatalf("Negative delta seconds is %s", s)
	}
}

func TestDeltaSeconds(t *testing.T) {
	if d, ok := deltaSeconds("60"); !ok || d != time.Minute {
		t.Fatalf("60 parsed as %v, %v", d, ok)
	}
	if d, ok := deltaSeconds("0"); !ok || d != 0 {
		t.Fatalf("0 parsed as %v, %v", d, ok)
	}
	if _, ok := deltaSeconds("-1"); ok {
		t.Fatal("Negative value should not be valid delta-seconds")
	}
	if _, ok := deltaSeconds("ten"); ok {
		t.Fatal("Non-numeric value should not be valid delta-seconds")
	}
	if d, ok := deltaSeconds("99999999999999999999999"); !ok || d != maxDeltaSeconds*time.Second {
		t.Fatalf("Overflowing value parsed as %v, %v", d, ok)
	}
}

func TestHttpDateIMF(t *testing.T) {
	date, err := HttpDate("Sun, 06 Nov 1994 08:49:37 GMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
	if want := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC); !date.Equal(want) {
		t.Fatalf("Date is %v", date)
	}
}

func TestHttpDateRFC850(t *testing.T) {
	_, err := HttpDate("Thursday, 18-Aug-50 02:01:18 GMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestHttpDateAsctime(t *testing.T) {
	date, err := HttpDate("Sun Nov  6 08:49:37 1994")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
	if date.Day() != 6 || date.Month() != time.November {
		t.Fatalf("Date is %v", date)
	}
}

func TestHttpDateTZCase(t *testing.T) {
	_, err := HttpDate("Thu, 18 Aug 2050 02:01:18 gMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestHttpDateInvalid(t *testing.T) {
	for _, str := range []string{"", "0", "yesterday", "Thu, 18 Aug 2050 02:01:18 CET"} {
		if _, err := HttpDate(str); err == nil {
			t.Fatalf("Date '%s' should not parse", str)
		}
	}
}

func TestToHttpDateRoundTrip(t *testing.T) {
	now := time.Date(2015, time.October, 21, 7, 28, 0, 0, time.UTC)
	str := ToHttpDate(now)
	if str != "Wed, 21 Oct 2015 07:28:00 GMT" {
		t.Fatalf("Formatted date is %s", str)
	}
	if parsed, err := HttpDate(str); err != nil || !parsed.Equal(now) {
		t.Fatalf("Parsed %v, %v", parsed, err)
	}
}
