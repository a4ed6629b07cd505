package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oisee/gbz80-sim/pkg/cpu"
	"github.com/oisee/gbz80-sim/pkg/inst"
)

func TestParseImmediate(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"06", 6},
		{"FF", 255},
		{"0x1F", 31},
		{"1Fh", 31},
		{"0C000h", 0xC000},
		{"#31", 31},
		{"%101", 5},
		{"%00011111", 31},
		{"0B", 0x0B},
		{"1b", 0x1B},
		{"01B", 0x1B},
		{"10B", 0x10B},
		{"101b", 0x101B},
	}
	for _, tc := range tests {
		got, err := parseImmediate(tc.in)
		if err != nil {
			t.Errorf("parseImmediate(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseImmediate(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "xyz", "0x", "#1F", "%102", "%"} {
		if _, err := parseImmediate(bad); err == nil {
			t.Errorf("parseImmediate(%q) succeeded", bad)
		}
	}
}

func TestParseProgram(t *testing.T) {
	got, err := parseProgram("06 05 ; LD B,5\n80,3C\n\n  ; done\n")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x06, 0x05, 0x80, 0x3C}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}

	got, err = parseProgram("3E 01B %1")
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x3E, 0x1B, 0x01}; !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}

	for _, bad := range []string{"", "; nothing", "100", "06 zz", "10B"} {
		if _, err := parseProgram(bad); err == nil {
			t.Errorf("parseProgram(%q) succeeded", bad)
		}
	}
}

func TestIsText(t *testing.T) {
	if !isText([]byte("06 05\n80\n")) {
		t.Error("byte list not detected as text")
	}
	if isText([]byte{0x06, 0x05, 0x80}) {
		t.Error("binary image detected as text")
	}
}

func TestRegFlag(t *testing.T) {
	var f regFlag
	if err := f.Set("A=5,HL=0C000h"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("f=0xFF"); err != nil {
		t.Fatal(err)
	}
	var s cpu.State
	if err := f.apply(&s); err != nil {
		t.Fatal(err)
	}
	if s.A != 5 || s.H != 0xC0 || s.L != 0 || s.F != 0xF0 {
		t.Errorf("unexpected state %+v", s)
	}
	if f.Type() != "reg=value" || !strings.Contains(f.String(), "A=0x5") {
		t.Errorf("String() = %q", f.String())
	}

	for _, bad := range []string{"A", "Q=1", "A=100", "BC=10000", "A=zz"} {
		var g regFlag
		if err := g.Set(bad); err == nil {
			t.Errorf("Set(%q) succeeded", bad)
		}
	}
}

func TestDisassemble(t *testing.T) {
	var buf bytes.Buffer
	if err := disassemble(&buf, inst.Default(), []byte{0x06, 0x05, 0x80, 0xD3, 0x21, 0x34}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"0000  06 05", "0002  80", "0003  D3", "0004  21 34"} {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
		}
	}
	if !strings.Contains(lines[2], "DB D3h") || !strings.Contains(lines[3], "truncated") {
		t.Errorf("unexpected listing:\n%s", buf.String())
	}
}

func TestReportCoverage(t *testing.T) {
	var buf bytes.Buffer
	if err := reportCoverage(&buf, inst.Default()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"245 legal opcodes (185 executed), 11 unused",
		"Unused: D3 DB DD E3 E4 EB EC ED F4 FC FD",
		" * 00000000  M1R",
		"   01110110  M1R",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestProgramFrom(t *testing.T) {
	prog, err := programFrom(nil, "06 05 80")
	if err != nil || len(prog) != 3 {
		t.Errorf("programFrom = % X, %v", prog, err)
	}
	if _, err := programFrom([]string{"x"}, "00"); err == nil {
		t.Error("file and inline program accepted together")
	}
	if _, err := programFrom(nil, ""); err == nil {
		t.Error("missing program accepted")
	}
}
