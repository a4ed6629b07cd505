package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oisee/gbz80-sim/pkg/cpu"
)

var _ pflag.Value = (*regFlag)(nil)

// regFlag collects NAME=VALUE register presets.
type regFlag struct {
	presets []regPreset
}

type regPreset struct {
	reg   cpu.Reg
	value uint16
}

func (f *regFlag) String() string {
	parts := make([]string, len(f.presets))
	for i, p := range f.presets {
		parts[i] = fmt.Sprintf("%s=%#x", p.reg, p.value)
	}
	return strings.Join(parts, ",")
}

// Set accepts one or more comma-separated presets, e.g. "A=5,HL=0C000h".
func (f *regFlag) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("%q: want NAME=VALUE", part)
		}
		r, err := cpu.ParseReg(name)
		if err != nil {
			return err
		}
		v, err := parseImmediate(val)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if v < 0 || v >= 1<<r.Width() {
			return fmt.Errorf("%s: %#x does not fit in %d bits", r, v, r.Width())
		}
		f.presets = append(f.presets, regPreset{reg: r, value: uint16(v)})
	}
	return nil
}

func (f *regFlag) Type() string {
	return "reg=value"
}

// apply writes the presets into s in the order given.
func (f *regFlag) apply(s *cpu.State) error {
	for _, p := range f.presets {
		if err := s.Set(p.reg, p.value); err != nil {
			return err
		}
	}
	return nil
}
