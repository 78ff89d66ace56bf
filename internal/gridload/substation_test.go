package gridload

import "testing"

func TestParseVoltageKV(t *testing.T) {
	cases := []struct {
		in       string
		fallback int
		want     int
	}{
		{"380", 110, 380},
		{"380;220", 110, 380},
		{"220 kV", 110, 220},
		{"380000", 110, 380},
		{"", 110, 110},
		{"unbekannt", 380, 380},
	}
	for _, tc := range cases {
		if got := ParseVoltageKV(tc.in, tc.fallback); got != tc.want {
			t.Errorf("ParseVoltageKV(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCapacityMVATiers(t *testing.T) {
	cases := []struct {
		voltage int
		want    float64
	}{
		{380, 2000},
		{400, 2000},
		{220, 750},
		{300, 750},
		{110, 300},
	}
	for _, tc := range cases {
		if got := capacityMVAForVoltage(tc.voltage); got != tc.want {
			t.Errorf("voltage %d: capacity %v, want %v", tc.voltage, got, tc.want)
		}
	}
}

func TestBuildSubstationsDedupPrefersNamed(t *testing.T) {
	primary := []Record{
		{ID: "osm-1", Name: "", Lat: 48.2000, Lon: 16.4000, VoltageKV: 380},
	}
	fallback := []Record{
		// ~200 m away from osm-1: same station, but named.
		{ID: "reg-1", Name: "UW Wien Südost", Lat: 48.2018, Lon: 16.4000, VoltageKV: 110},
		// Far away: distinct station.
		{ID: "reg-2", Name: "UW Graz", Lat: 47.07, Lon: 15.44, VoltageKV: 110},
	}

	subs := BuildSubstations(primary, fallback)
	if len(subs) != 2 {
		t.Fatalf("expected 2 substations, got %d", len(subs))
	}
	if subs[0].Name != "UW Wien Südost" {
		t.Fatalf("named record should replace anonymous one, got %q", subs[0].Name)
	}
}

func TestBuildSubstationsDedupKeepsExistingNamed(t *testing.T) {
	primary := []Record{
		{ID: "osm-1", Name: "UW Ernsthofen", Lat: 48.04, Lon: 14.48, VoltageKV: 380},
	}
	fallback := []Record{
		{ID: "reg-1", Name: "Ernsthofen (registry)", Lat: 48.0405, Lon: 14.4805, VoltageKV: 110},
	}
	subs := BuildSubstations(primary, fallback)
	if len(subs) != 1 || subs[0].Name != "UW Ernsthofen" {
		t.Fatalf("existing named record should survive, got %+v", subs[0])
	}
}

func TestBuildSubstationsFilters(t *testing.T) {
	records := []Record{
		{ID: "low", Name: "MS Station", Lat: 48.1, Lon: 16.1, VoltageKV: 30},
		{ID: "bad", Name: "Nullinsel", Lat: 0, Lon: 0, VoltageKV: 380},
		{ID: "ok", Name: "UW Test", Lat: 48.2, Lon: 16.2, VoltageKV: 110},
	}
	subs := BuildSubstations(records, nil)
	if len(subs) != 1 || subs[0].ID != "ok" {
		t.Fatalf("expected only the valid 110 kV record, got %d", len(subs))
	}
	if subs[0].CapacityMVA != 300 {
		t.Fatalf("capacity %v, want 300", subs[0].CapacityMVA)
	}
}
