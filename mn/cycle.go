package mn

import (
	"time"

	"github.com/FabianPetersen/powerlink"
)

// A Cycle turns scheduler ticks into the SoC frame sequence of a running
// network: it accumulates the relative time counter and raises the
// multiplexed-cycle-completed flag when the multiplexed cycle wraps.
//
// A Cycle belongs to the single scheduler goroutine; it is not safe for
// concurrent use.
type Cycle struct {
	// CycleTime is the isochronous cycle length.
	CycleTime time.Duration
	// MultiplexedCycleLen is the number of cycles per multiplexed cycle;
	// 0 disables multiplexing.
	MultiplexedCycleLen int
	// NetTime, when non-nil, supplies the net time distributed in each
	// SoC. Only emitted by codecs configured with WithNetTime.
	NetTime func() *powerlink.NetTime

	relative uint64
	slot     int
}

// NextSoc returns the SoC frame for the next cycle. The first frame after
// construction or Reset carries relative time zero.
func (cy *Cycle) NextSoc() *powerlink.Frame {
	var flag1 byte
	if cy.MultiplexedCycleLen > 0 {
		cy.slot++
		if cy.slot >= cy.MultiplexedCycleLen {
			cy.slot = 0
			flag1 |= powerlink.FlagMC
		}
	}

	var nt *powerlink.NetTime
	if cy.NetTime != nil {
		nt = cy.NetTime()
	}

	f := powerlink.NewSocFrame(flag1, nt, cy.relative)
	cy.relative += uint64(cy.CycleTime / time.Microsecond)
	return f
}

// Reset zeroes the relative time counter and the multiplexed slot, as
// required when the NMT state machine re-enters NMT_GS_INITIALISING.
func (cy *Cycle) Reset() {
	cy.relative = 0
	cy.slot = 0
}
