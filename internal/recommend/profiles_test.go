package recommend

import "testing"

func TestParseSensorKind(t *testing.T) {
	cases := []struct {
		in   string
		want SensorKind
	}{
		{"Temperature", KindTemperature},
		{"room temperature probe", KindTemperature},
		{"Humidity", KindHumidity},
		{"relative humidity", KindHumidity},
		{"Pressure", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		if got := ParseSensorKind(tc.in); got != tc.want {
			t.Fatalf("ParseSensorKind(%q) should be %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestSeverityPriorityMap(t *testing.T) {
	cases := []struct {
		severity Severity
		want     int
	}{
		{SeverityLow, 1},
		{SeverityMedium, 2},
		{SeverityHigh, 4},
		{SeverityCritical, 5},
		{Severity("bogus"), 3},
	}
	for _, tc := range cases {
		if got := tc.severity.Priority(); got != tc.want {
			t.Fatalf("%s should map to priority %d, got %d", tc.severity, tc.want, got)
		}
	}
}

func TestSeverityAtLeast(t *testing.T) {
	if !SeverityCritical.AtLeast(SeverityHigh) {
		t.Fatal("critical should be at least high")
	}
	if SeverityMedium.AtLeast(SeverityHigh) {
		t.Fatal("medium should not reach high")
	}
	if !SeverityHigh.AtLeast(SeverityHigh) {
		t.Fatal("a severity should reach itself")
	}
}

func TestLookupFallsBackToOffice(t *testing.T) {
	table := DefaultProfiles()

	got := table.Lookup("spaceship")
	want := table["office"]
	if got != want {
		t.Fatalf("unknown room should resolve to the office profile, got %+v", got)
	}

	server := table.Lookup("server_room")
	if server.Temperature.Min != 18 || server.Temperature.Max != 24 {
		t.Fatalf("server_room temperature range wrong: %+v", server.Temperature)
	}
}

func TestDefaultProfilesValidate(t *testing.T) {
	if err := DefaultProfiles().Validate(); err != nil {
		t.Fatalf("built-in profiles must validate: %v", err)
	}
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	missing := ProfileTable{
		"server_room": DefaultProfiles()["server_room"],
	}
	if err := missing.Validate(); err == nil {
		t.Fatal("a table without the office fallback must fail validation")
	}

	broken := DefaultProfiles()
	p := broken["office"]
	p.TemperatureTarget = 99
	broken["office"] = p
	if err := broken.Validate(); err == nil {
		t.Fatal("a target outside its range must fail validation")
	}

	empty := DefaultProfiles()
	p = empty["laboratory"]
	p.Humidity = Range{Min: 50, Max: 50}
	empty["laboratory"] = p
	if err := empty.Validate(); err == nil {
		t.Fatal("an empty range must fail validation")
	}
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Min: 18, Max: 24}
	if r.Width() != 6 {
		t.Fatalf("width should be 6, got %v", r.Width())
	}
	if !r.Contains(18) || !r.Contains(24) || !r.Contains(21) {
		t.Fatal("range bounds are inclusive")
	}
	if r.Contains(17.9) || r.Contains(24.1) {
		t.Fatal("values outside the bounds must not be contained")
	}
}
