package text

// Boundaries of the Unicode UTF-8 legality table.
const (
	minTrail = 0x80
	maxTrail = 0xBF

	// Lowest lead byte that can start a non-overlong multi-byte sequence.
	// 0xC0 and 0xC1 only ever encode overlong 2-byte forms.
	minMultiLead = 0xC2
	// Highest lead byte of a sequence at or below U+10FFFF.
	maxLead = 0xF4

	leadE0 = 0xE0
	leadF0 = 0xF0
	leadF4 = 0xF4

	// Special first trail ranges: after 0xE0 and 0xF0 the lower values are
	// overlong, after 0xF4 the higher values exceed U+10FFFF.
	minTrailAfterE0 = 0xA0
	minTrailAfterF0 = 0x90
	maxTrailAfterF4 = 0x8F
)

// trailingBytes maps a lead byte to the number of trailing bytes it announces.
var trailingBytes = [256]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5,
}

// SequenceLength returns the total length (1..6) of the sequence lead starts.
// Lengths 5 and 6 are never legal; they exist so a walk can still skip them.
func SequenceLength(lead byte) int {
	return int(trailingBytes[lead]) + 1
}

func isTrail(b byte) bool {
	return b >= minTrail && b <= maxTrail
}

func legalLead(lead byte) bool {
	if lead >= minTrail && lead < minMultiLead {
		return false
	}
	return lead <= maxLead
}

func legalFirstTrail(lead, b byte) bool {
	switch lead {
	case leadE0:
		return b >= minTrailAfterE0 && b <= maxTrail
	case leadF0:
		return b >= minTrailAfterF0 && b <= maxTrail
	case leadF4:
		return b >= minTrail && b <= maxTrailAfterF4
	default:
		return isTrail(b)
	}
}

// legal reports whether seq, sized by SequenceLength(seq[0]), is legal UTF-8.
func legal(seq []byte) bool {
	lead := seq[0]
	switch len(seq) {
	case 1:
		return legalLead(lead)
	case 2:
		return legalLead(lead) && legalFirstTrail(lead, seq[1])
	case 3:
		return legalLead(lead) && legalFirstTrail(lead, seq[1]) && isTrail(seq[2])
	case 4:
		return legalLead(lead) && legalFirstTrail(lead, seq[1]) && isTrail(seq[2]) && isTrail(seq[3])
	default:
		return false
	}
}
