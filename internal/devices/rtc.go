package devices

import "github.com/mothkernel/core/internal/ioport"

// RTC is the real-time-clock reader bring-up seeds the wall clock from,
// exactly once, before interrupts are enabled.
type RTC interface {
	Now() (secs, nanos int64)
}

const (
	cmosAddress = 0x70
	cmosData    = 0x71
)

// HardwareRTC reads the CMOS real-time clock over ports 0x70/0x71,
// decoding the BCD register set into seconds since the Unix epoch. The
// RTC has whole-second granularity, so nanos is always zero. Like the
// rest of the raw port I/O, it only works in ring 0.
type HardwareRTC struct{}

func (HardwareRTC) Now() (secs, nanos int64) {
	// Wait out any update in progress so the register set is consistent.
	for cmosRead(0x0A)&0x80 != 0 {
	}
	sec := bcd(cmosRead(0x00))
	min := bcd(cmosRead(0x02))
	hour := bcd(cmosRead(0x04))
	day := bcd(cmosRead(0x07))
	month := bcd(cmosRead(0x08))
	year := bcd(cmosRead(0x09)) + 2000

	return epochDays(year, month, day)*86400 + hour*3600 + min*60 + sec, 0
}

func cmosRead(reg uint8) uint8 {
	ioport.Outb(cmosAddress, reg)
	return ioport.Inb(cmosData)
}

func bcd(v uint8) int64 {
	return int64(v>>4)*10 + int64(v&0x0F)
}

// epochDays converts a civil date to days since 1970-01-01. Valid for any
// date the RTC can report (its century is pinned to 20xx above).
func epochDays(y, m, d int64) int64 {
	if m <= 2 {
		y--
	}
	era := y / 400
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}
