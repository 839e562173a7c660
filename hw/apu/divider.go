package apu

// A Divider is the timing primitive shared by every unit of the APU. Each
// clock decrements Counter; when it is already 0 the divider reloads it from
// Period, advances Step and outputs a pulse.
//
// A non-zero Limit bounds Step: Clock wraps it back to From once Limit is
// exceeded, ClockInverse reloads it to Limit after reaching 0 (only if Loop
// is set).
type Divider struct {
	Period  int
	Counter int
	Step    int
	Limit   int
	From    int
	Loop    bool
}

// Clock clocks the divider, it reports whether it generated a pulse.
func (d *Divider) Clock() bool {
	if d.Counter > 0 {
		d.Counter--
		return false
	}

	d.Counter = d.Period
	d.Step++
	if d.Limit != 0 && d.Step > d.Limit {
		d.Step = d.From
	}
	return true
}

// ClockInverse is like Clock but decrements Step, which stops at 0 unless
// Loop is set.
func (d *Divider) ClockInverse() bool {
	if d.Counter > 0 {
		d.Counter--
		return false
	}

	d.Counter = d.Period
	switch {
	case d.Step > 0:
		d.Step--
	case d.Loop && d.Limit != 0:
		d.Step = d.Limit
	}
	return true
}

// Reload restarts the divider at the beginning of its period.
func (d *Divider) Reload() {
	d.Counter = d.Period
}
