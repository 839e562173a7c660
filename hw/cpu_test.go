package hw

import (
	"os"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"famicore/emu/log"
	"famicore/hw/hwdefs"
)

func init() {
	log.Disable()
}

type access struct {
	Addr uint16
	Val  uint8
}

// testMem is a flat 64KB address space recording bus accesses.
type testMem struct {
	data   [0x10000]uint8
	reads  []uint16
	writes []access
}

func (m *testMem) Read8(addr uint16) uint8 {
	m.reads = append(m.reads, addr)
	return m.data[addr]
}

func (m *testMem) Write8(addr uint16, val uint8) {
	m.writes = append(m.writes, access{addr, val})
	m.data[addr] = val
}

func (m *testMem) Peek8(addr uint16) uint8 { return m.data[addr] }

func (m *testMem) load(addr uint16, prog ...uint8) {
	copy(m.data[addr:], prog)
}

func (m *testMem) setVector(vec, addr uint16) {
	m.data[vec] = uint8(addr)
	m.data[vec+1] = uint8(addr >> 8)
}

// newTestCPU returns a CPU with prog loaded at $8000, where the reset
// vector points.
func newTestCPU(t *testing.T, prog ...uint8) (*CPU, *testMem) {
	t.Helper()

	mem := &testMem{}
	mem.setVector(ResetVector, 0x8000)
	mem.setVector(NMIVector, 0x9000)
	mem.setVector(IRQVector, 0xA000)
	mem.load(0x8000, prog...)

	cpu := NewCPU(mem)
	mem.reads = nil
	mem.writes = nil
	return cpu, mem
}

// step runs one instruction (or interrupt sequence) and returns the number
// of cycles it took.
func step(cpu *CPU) int {
	n := 1
	cpu.Tick()
	for !cpu.InstructionDone() {
		cpu.Tick()
		n++
	}
	return n
}

func TestCPUPowerUp(t *testing.T) {
	cpu, _ := newTestCPU(t)

	if cpu.PC != 0x8000 {
		t.Errorf("PC = %04X, want 8000", cpu.PC)
	}
	if cpu.SP != 0xFD {
		t.Errorf("SP = %02X, want FD", cpu.SP)
	}
	if cpu.P != 0x24 {
		t.Errorf("P = %s, want %s", cpu.P, P(0x24))
	}
}

func TestCPUReset(t *testing.T) {
	cpu, mem := newTestCPU(t)
	cpu.A, cpu.X, cpu.Y = 1, 2, 3
	cpu.P = Carry
	cpu.PC = 0x1234
	mem.setVector(ResetVector, 0xC000)

	cpu.Reset(hwdefs.SoftReset)
	if cpu.SP != 0xFA || !cpu.P.has(Interrupt|Carry) || cpu.A != 1 || cpu.PC != 0xC000 {
		t.Errorf("after soft reset: SP=%02X P=%s A=%02X PC=%04X", cpu.SP, cpu.P, cpu.A, cpu.PC)
	}

	cpu.Reset(hwdefs.HardReset)
	if cpu.SP != 0xFD || cpu.P != powerUpP || cpu.A|cpu.X|cpu.Y != 0 || cpu.PC != 0xC000 {
		t.Errorf("after hard reset: SP=%02X P=%s A=%02X X=%02X Y=%02X PC=%04X", cpu.SP, cpu.P, cpu.A, cpu.X, cpu.Y, cpu.PC)
	}
}

func TestInstructionCycles(t *testing.T) {
	tests := []struct {
		name string
		prog []uint8
		x, y uint8
		p    P
		want int
	}{
		{name: "LDA imm", prog: []uint8{0xA9, 0x01}, want: 2},
		{name: "LDA zp", prog: []uint8{0xA5, 0x10}, want: 3},
		{name: "LDA abs,X", prog: []uint8{0xBD, 0x00, 0x20}, x: 1, want: 4},
		{name: "LDA abs,X cross", prog: []uint8{0xBD, 0xFF, 0x20}, x: 1, want: 5},
		{name: "LDA (zp),Y", prog: []uint8{0xB1, 0x10}, y: 0xFF, want: 5},
		{name: "STA abs,X", prog: []uint8{0x9D, 0x00, 0x20}, x: 1, want: 5},
		{name: "STA abs,X cross", prog: []uint8{0x9D, 0xFF, 0x20}, x: 1, want: 5},
		{name: "INC abs,X", prog: []uint8{0xFE, 0x00, 0x20}, want: 7},
		{name: "INC zp", prog: []uint8{0xE6, 0x10}, want: 5},
		{name: "JMP abs", prog: []uint8{0x4C, 0x00, 0x90}, want: 3},
		{name: "JMP ind", prog: []uint8{0x6C, 0x00, 0x20}, want: 5},
		{name: "JSR", prog: []uint8{0x20, 0x00, 0x90}, want: 6},
		{name: "BRK", prog: []uint8{0x00}, want: 7},
		{name: "BNE not taken", prog: []uint8{0xD0, 0x10}, p: Zero, want: 2},
		{name: "BNE taken", prog: []uint8{0xD0, 0x10}, want: 3},
		{name: "BNE taken cross", prog: []uint8{0xD0, 0x80}, want: 4},
		{name: "DCP abs,Y", prog: []uint8{0xDB, 0x00, 0x20}, want: 7},
		{name: "NOP abs,X cross", prog: []uint8{0x1C, 0xFF, 0x20}, x: 1, want: 5},
		{name: "JAM", prog: []uint8{0x02}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, tt.prog...)
			cpu.X, cpu.Y, cpu.P = tt.x, tt.y, tt.p

			if got := step(cpu); got != tt.want {
				t.Errorf("%s took %d cycles, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestRMWDoubleWrite(t *testing.T) {
	cpu, mem := newTestCPU(t, 0xEE, 0x04, 0x20) // INC $2004
	mem.data[0x2004] = 0x41

	step(cpu)

	want := []access{{0x2004, 0x41}, {0x2004, 0x42}}
	if diff := cmp.Diff(want, mem.writes); diff != "" {
		t.Errorf("writes mismatch (-want +got):\n%s", diff)
	}
}

func TestDummyReads(t *testing.T) {
	tests := []struct {
		name string
		prog []uint8
		want []uint16 // reads after the opcode fetch
	}{
		{
			name: "LDA abs,X cross",
			prog: []uint8{0xBD, 0xFF, 0x20},
			want: []uint16{0x8001, 0x8002, 0x2000, 0x2100},
		},
		{
			name: "LDA abs,X",
			prog: []uint8{0xBD, 0x00, 0x20},
			want: []uint16{0x8001, 0x8002, 0x2001},
		},
		{
			name: "STA abs,X",
			prog: []uint8{0x9D, 0x00, 0x20},
			want: []uint16{0x8001, 0x8002, 0x2001},
		},
		{
			name: "INX",
			prog: []uint8{0xE8},
			want: []uint16{0x8001},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := newTestCPU(t, tt.prog...)
			cpu.X = 1

			step(cpu)

			if diff := cmp.Diff(tt.want, mem.reads[1:]); diff != "" {
				t.Errorf("reads mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJMPIndirectPageWrap(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	mem.data[0x02FF] = 0x34
	mem.data[0x0200] = 0x12
	mem.data[0x0300] = 0x56

	step(cpu)

	if cpu.PC != 0x1234 {
		t.Errorf("PC = %04X, want 1234", cpu.PC)
	}
}

func TestADCSBC(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint8
		a, val  uint8
		carry   bool
		want    uint8
		wantC   bool
		wantV   bool
		wantN   bool
		wantZ   bool
	}{
		{name: "adc", opcode: 0x69, a: 0x50, val: 0x10, want: 0x60},
		{name: "adc overflow", opcode: 0x69, a: 0x50, val: 0x50, want: 0xA0, wantV: true, wantN: true},
		{name: "adc carry out", opcode: 0x69, a: 0xFF, val: 0x01, want: 0x00, wantC: true, wantZ: true},
		{name: "adc carry in", opcode: 0x69, a: 0x01, val: 0x01, carry: true, want: 0x03},
		{name: "adc negative overflow", opcode: 0x69, a: 0xD0, val: 0x90, want: 0x60, wantC: true, wantV: true},
		{name: "sbc", opcode: 0xE9, a: 0x50, val: 0xF0, carry: true, want: 0x60},
		{name: "sbc overflow", opcode: 0xE9, a: 0x50, val: 0xB0, carry: true, want: 0xA0, wantV: true, wantN: true},
		{name: "sbc borrow", opcode: 0xE9, a: 0xD0, val: 0x70, carry: true, want: 0x60, wantC: true, wantV: true},
		{name: "sbc borrow in", opcode: 0xE9, a: 0x05, val: 0x01, want: 0x03, wantC: true},
		{name: "sbc unofficial", opcode: 0xEB, a: 0x05, val: 0x05, carry: true, want: 0x00, wantC: true, wantZ: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, tt.opcode, tt.val)
			cpu.A = tt.a
			cpu.P.setIf(Carry, tt.carry)

			step(cpu)

			if cpu.A != tt.want {
				t.Errorf("A = %02X, want %02X", cpu.A, tt.want)
			}
			flags := []struct {
				flag P
				want bool
			}{{Carry, tt.wantC}, {Overflow, tt.wantV}, {Negative, tt.wantN}, {Zero, tt.wantZ}}
			for _, f := range flags {
				if cpu.P.has(f.flag) != f.want {
					t.Errorf("P = %s, flag %s should be %t", cpu.P, f.flag, f.want)
				}
			}
		})
	}
}

func TestNMI(t *testing.T) {
	cpu, mem := newTestCPU(t, 0xEA, 0xEA, 0xEA) // NOP
	cpu.P = Carry

	cpu.Tick() // NOP fetch
	cpu.TriggerNMI()
	cpu.Tick() // NOP executes
	if cpu.PC != 0x8001 {
		t.Fatalf("PC = %04X, want 8001", cpu.PC)
	}

	if n := step(cpu); n != 7 {
		t.Errorf("NMI took %d cycles, want 7", n)
	}
	if cpu.PC != 0x9000 {
		t.Errorf("PC = %04X, want 9000", cpu.PC)
	}
	if !cpu.P.has(Interrupt) {
		t.Errorf("I flag should be set")
	}

	want := []access{
		{0x01FD, 0x80},
		{0x01FC, 0x01},
		{0x01FB, uint8(Carry | Unused)},
	}
	if diff := cmp.Diff(want, mem.writes); diff != "" {
		t.Errorf("stack writes mismatch (-want +got):\n%s", diff)
	}
}

func TestIRQLevel(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x78, 0xEA, 0x58, 0xEA) // SEI; NOP; CLI; NOP
	mem.load(0xA000, 0x40)                           // RTI

	cpu.SetIRQSource(hwdefs.FrameCounter)
	step(cpu) // SEI
	step(cpu) // NOP, IRQ is masked
	if cpu.PC != 0x8002 {
		t.Fatalf("PC = %04X, masked IRQ should not be serviced", cpu.PC)
	}

	step(cpu) // CLI
	step(cpu) // IRQ
	if cpu.PC != 0xA000 {
		t.Fatalf("PC = %04X, want A000", cpu.PC)
	}
	if got := mem.data[0x01FB]; got&uint8(Break) != 0 {
		t.Errorf("pushed P = %02X, B should be clear", got)
	}
	if !cpu.HasIRQSource(hwdefs.FrameCounter) {
		t.Errorf("IRQ line should stay asserted until acknowledged")
	}

	cpu.ClearIRQSource(hwdefs.FrameCounter)
	step(cpu) // RTI
	if cpu.PC != 0x8003 {
		t.Errorf("PC = %04X after RTI, want 8003", cpu.PC)
	}
}

func TestBRK(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x00, 0xFF) // BRK, padding byte

	step(cpu)

	if cpu.PC != 0xA000 {
		t.Errorf("PC = %04X, want A000", cpu.PC)
	}
	want := []access{
		{0x01FD, 0x80},
		{0x01FC, 0x02},
		{0x01FB, uint8(powerUpP | Break | Unused)},
	}
	if diff := cmp.Diff(want, mem.writes); diff != "" {
		t.Errorf("stack writes mismatch (-want +got):\n%s", diff)
	}
}

func TestDMASuspend(t *testing.T) {
	tests := []struct {
		name  string
		ticks int
		want  int
	}{
		{"even", 0, 513},
		{"odd", 1, 514},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, 0xEA)
			for range tt.ticks {
				cpu.Tick()
			}

			cpu.DMASuspend()
			n := 0
			for cpu.dma > 0 {
				cpu.Tick()
				n++
			}
			if n != tt.want {
				t.Errorf("DMA took %d cycles, want %d", n, tt.want)
			}
		})
	}
}

func TestStallSuspendsExecution(t *testing.T) {
	cpu, _ := newTestCPU(t, 0xE8) // INX
	cpu.Stall(4)

	for range 4 {
		cpu.Tick()
	}
	if cpu.PC != 0x8000 {
		t.Fatalf("PC = %04X, CPU should be stalled", cpu.PC)
	}
	step(cpu)
	if cpu.X != 1 {
		t.Errorf("X = %d, want 1", cpu.X)
	}
}

func TestRequestReset(t *testing.T) {
	cpu, _ := newTestCPU(t, 0xEA, 0xEA)
	cpu.RequestReset()

	if n := step(cpu); n != 7 {
		t.Errorf("reset took %d cycles, want 7", n)
	}
	if cpu.PC != 0x8000 || cpu.SP != 0xFA {
		t.Errorf("PC=%04X SP=%02X, want PC=8000 SP=FA", cpu.PC, cpu.SP)
	}
}

func TestUnstableStore(t *testing.T) {
	// SHX $20FF,Y with Y=1 crosses the page.
	cpu, mem := newTestCPU(t, 0x9E, 0xFF, 0x20)
	cpu.X, cpu.Y = 0x0F, 1

	step(cpu)

	// X & ($20+1) = $01, which also replaces the target high byte.
	want := access{0x0100, 0x01}
	if len(mem.writes) != 1 || mem.writes[0] != want {
		t.Errorf("writes = %v, want [%v]", mem.writes, want)
	}
}

func TestCPUState(t *testing.T) {
	prog := []uint8{0xA2, 0x00, 0xE8, 0xD0, 0xFD, 0x4C, 0x00, 0x80} // LDX #0; loop: INX; BNE loop; JMP $8000
	cpu, _ := newTestCPU(t, prog...)

	for range 1000 {
		cpu.Tick()
	}
	state := cpu.State()

	run := func() []uint8 {
		var xs []uint8
		for range 500 {
			cpu.Tick()
			xs = append(xs, cpu.X)
		}
		return xs
	}

	first := run()
	cpu.SetState(state)
	second := run()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("restored run differs (-first +second):\n%s", diff)
	}
}

/* single step fixtures */

type stepState struct {
	PC      uint16
	S       uint8
	A, X, Y uint8
	P       uint8
	RAM     [][2]uint16
}

type stepTest struct {
	Name    string
	Initial stepState
	Final   stepState
	Cycles  int
}

func decodeStepState(d *jx.Decoder, s *stepState) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = d.UInt16()
		case "s":
			s.S, err = d.UInt8()
		case "a":
			s.A, err = d.UInt8()
		case "x":
			s.X, err = d.UInt8()
		case "y":
			s.Y, err = d.UInt8()
		case "p":
			s.P, err = d.UInt8()
		case "ram":
			err = d.Arr(func(d *jx.Decoder) error {
				var (
					cell [2]uint16
					i    int
				)
				err := d.Arr(func(d *jx.Decoder) error {
					v, err := d.UInt16()
					if i < len(cell) {
						cell[i] = v
					}
					i++
					return err
				})
				s.RAM = append(s.RAM, cell)
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
}

func loadStepTests(t *testing.T, path string) []stepTest {
	t.Helper()

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var tests []stepTest
	err = jx.DecodeBytes(buf).Arr(func(d *jx.Decoder) error {
		var st stepTest
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				st.Name, err = d.Str()
			case "initial":
				err = decodeStepState(d, &st.Initial)
			case "final":
				err = decodeStepState(d, &st.Final)
			case "cycles":
				st.Cycles, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		})
		tests = append(tests, st)
		return err
	})
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return tests
}

func TestSingleStep(t *testing.T) {
	for _, tt := range loadStepTests(t, "testdata/cpu_steps.json") {
		t.Run(tt.Name, func(t *testing.T) {
			mem := &testMem{}
			cpu := NewCPU(mem)

			cpu.PC, cpu.SP = tt.Initial.PC, tt.Initial.S
			cpu.A, cpu.X, cpu.Y = tt.Initial.A, tt.Initial.X, tt.Initial.Y
			cpu.P = P(tt.Initial.P)
			for _, cell := range tt.Initial.RAM {
				mem.data[cell[0]] = uint8(cell[1])
			}

			if n := step(cpu); n != tt.Cycles {
				t.Errorf("took %d cycles, want %d", n, tt.Cycles)
			}

			got := stepState{
				PC: cpu.PC, S: cpu.SP,
				A: cpu.A, X: cpu.X, Y: cpu.Y,
				P: uint8(cpu.P),
			}
			for _, cell := range tt.Final.RAM {
				got.RAM = append(got.RAM, [2]uint16{cell[0], uint16(mem.data[cell[0]])})
			}
			if diff := cmp.Diff(tt.Final, got); diff != "" {
				t.Errorf("final state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
