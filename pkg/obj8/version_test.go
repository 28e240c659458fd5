package obj8

import "testing"

func TestVersionAtLeast(t *testing.T) {
	if !Version1210.AtLeast(Version1200) {
		t.Error("1210 should satisfy a 1200 minimum")
	}
	if Version1130.AtLeast(Version1200) {
		t.Error("1130 should not satisfy a 1200 minimum")
	}
}

func TestVersionValid(t *testing.T) {
	for _, v := range []Version{Version1100, Version1130, Version1200, Version1210} {
		if !v.Valid() {
			t.Errorf("%s should be valid", v)
		}
	}
	for _, v := range []Version{0, 1000, 1150, 1300} {
		if v.Valid() {
			t.Errorf("%d should not be valid", int(v))
		}
	}
}

func TestParseExportType(t *testing.T) {
	tests := []struct {
		in   string
		want ExportType
	}{
		{"aircraft", ExportAircraft},
		{"cockpit", ExportCockpit},
		{"scenery", ExportScenery},
		{"instanced_scenery", ExportInstancedScenery},
	}
	for _, tt := range tests {
		got, err := ParseExportType(tt.in)
		if err != nil {
			t.Errorf("ParseExportType(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseExportType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseExportType("helicopter"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestGateAllow(t *testing.T) {
	tests := []struct {
		name string
		gate Gate
		cmd  Command
		want GateResult
	}{
		{
			name: "unrestricted command passes any gate",
			gate: Gate{Version: Version1100, Type: ExportScenery},
			cmd:  Command{Directive: "TRIS"},
			want: GateAllowed,
		},
		{
			name: "version met",
			gate: Gate{Version: Version1200, Type: ExportAircraft},
			cmd:  Command{Directive: "GLOBAL_luminance", MinVersion: Version1200},
			want: GateAllowed,
		},
		{
			name: "version too old",
			gate: Gate{Version: Version1130, Type: ExportAircraft},
			cmd:  Command{Directive: "GLOBAL_luminance", MinVersion: Version1200},
			want: GateRejected,
		},
		{
			name: "type restricted",
			gate: Gate{Version: Version1210, Type: ExportScenery},
			cmd:  Command{Directive: "ATTR_cockpit", Types: MaskAirplane},
			want: GateRejected,
		},
		{
			name: "type allowed",
			gate: Gate{Version: Version1210, Type: ExportCockpit},
			cmd:  Command{Directive: "ATTR_cockpit", Types: MaskAirplane},
			want: GateAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := tt.gate.Allow(tt.cmd)
			if got != tt.want {
				t.Errorf("Allow(%s) = %v, want %v", tt.cmd.Directive, got, tt.want)
			}
		})
	}
}

func TestGateDowngrade(t *testing.T) {
	fallback := &Command{Directive: "THERMAL_source",
		Args: []string{"sim/temp", "sim/onoff"}, MinVersion: Version1200}
	cmd := Command{Directive: "THERMAL_source2",
		Args: []string{"0", "30.000000", "sim/onoff"}, MinVersion: Version1210, Fallback: fallback}

	// At 1210 the primary form goes out unchanged.
	got, res := Gate{Version: Version1210, Type: ExportAircraft}.Allow(cmd)
	if res != GateAllowed || got.Directive != "THERMAL_source2" {
		t.Errorf("at 1210: got %s/%v, want THERMAL_source2/allowed", got.Directive, res)
	}

	// At 1200 the fallback is substituted.
	got, res = Gate{Version: Version1200, Type: ExportAircraft}.Allow(cmd)
	if res != GateDowngraded {
		t.Fatalf("at 1200: result %v, want downgraded", res)
	}
	if got.Directive != "THERMAL_source" {
		t.Errorf("at 1200: directive %s, want THERMAL_source", got.Directive)
	}

	// Below the fallback's own minimum everything is rejected.
	if _, res = (Gate{Version: Version1130, Type: ExportAircraft}).Allow(cmd); res != GateRejected {
		t.Errorf("at 1130: result %v, want rejected", res)
	}
}

func TestTypeMaskAllows(t *testing.T) {
	if !MaskAirplane.Allows(ExportAircraft) || !MaskAirplane.Allows(ExportCockpit) {
		t.Error("airplane mask must cover aircraft and cockpit")
	}
	if MaskAirplane.Allows(ExportScenery) {
		t.Error("airplane mask must not cover scenery")
	}
	if !MaskGround.Allows(ExportInstancedScenery) {
		t.Error("ground mask must cover instanced scenery")
	}
	for _, et := range []ExportType{ExportAircraft, ExportCockpit, ExportScenery, ExportInstancedScenery} {
		if !MaskAll.Allows(et) {
			t.Errorf("MaskAll must cover %s", et)
		}
	}
}
