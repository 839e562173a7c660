package log

import (
	"fmt"
	"strings"
)

type ModuleMask uint64
type Module uint

const ModuleMaskAll ModuleMask = 0xFFFFFFFFFFFFFFFF

// Predefined modules. Additional modules can be registered with NewModule.
const (
	ModEmu Module = iota + 1
	ModCPU
	ModMem
	ModHwIo
	ModPPU
	ModInput
	ModSound
	ModMapper
	ModDMA

	endStandardMods
)

var modCount = endStandardMods

var modDebugMask ModuleMask = 0

var modNames = []string{
	"<error>", "emu", "cpu", "mem", "hwio", "ppu", "input", "sound", "mapper", "dma",
}

// NewModule registers and returns a new logging module.
func NewModule(name string) Module {
	mod := modCount
	modCount++
	modNames = append(modNames, name)
	return mod
}

// ModuleByName returns the module with the given name.
func ModuleByName(name string) (Module, bool) {
	for idx, s := range modNames {
		if idx > 0 && s == name {
			return Module(idx), true
		}
	}
	return 0, false
}

// ModuleNames returns the names of all registered modules.
func ModuleNames() []string {
	return append([]string(nil), modNames[1:]...)
}

// ParseMask parses a comma separated list of module names into a mask. The
// special name "all" enables all modules.
func ParseMask(s string) (ModuleMask, error) {
	var mask ModuleMask
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		switch name {
		case "":
			continue
		case "all":
			return ModuleMaskAll, nil
		}
		mod, ok := ModuleByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown log module %q (valid modules: %s)", name, strings.Join(ModuleNames(), ","))
		}
		mask |= mod.Mask()
	}
	return mask, nil
}

func EnableDebugModules(mask ModuleMask) {
	modDebugMask |= mask
}

func DisableDebugModules(mask ModuleMask) {
	modDebugMask &^= mask
}

func (mod Module) String() string {
	if int(mod) < len(modNames) {
		return modNames[mod]
	}
	return modNames[0]
}

func (mod Module) Mask() ModuleMask {
	return 1 << ModuleMask(mod)
}

// Enabled reports whether mod logs at lvl. Warnings and above are always
// enabled, unless logging has been disabled altogether.
func (mod Module) Enabled(lvl Level) bool {
	if disabled {
		return false
	}
	return lvl <= WarnLevel || modDebugMask&mod.Mask() != 0
}

func (mod Module) logz(lvl Level, msg string) *EntryZ {
	if !mod.Enabled(lvl) {
		return nil
	}
	e := newEntryZ()
	e.lvl = lvl
	e.msg = msg
	e.mod = mod
	return e
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.logz(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.logz(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.logz(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.logz(ErrorLevel, msg) }
func (mod Module) FatalZ(msg string) *EntryZ { return mod.logz(FatalLevel, msg) }

// printf-like family, for the rare places where the fields API is too
// verbose (CLI, configuration).

func (mod Module) Infof(format string, args ...any) {
	if mod.Enabled(InfoLevel) {
		std.WithField("_mod", mod.String()).Infof(format, args...)
	}
}

func (mod Module) Warnf(format string, args ...any) {
	if mod.Enabled(WarnLevel) {
		std.WithField("_mod", mod.String()).Warnf(format, args...)
	}
}

func (mod Module) Fatalf(format string, args ...any) {
	std.WithField("_mod", mod.String()).Fatalf(format, args...)
}
