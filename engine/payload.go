package engine

// FillPayload writes the deterministic payload for stream position pos into
// buf. Byte 0 is a distinct marker character identifying the position, which
// makes a lost payload easy to spot on the receiving side. The remaining
// bytes draw a chevron band of digits whose width follows the distance
// between pos and the stream midpoint; the ones land outside the band and
// the zeros inside it.
func FillPayload(buf []byte, pos int) {
	n := len(buf)
	if n == 0 {
		return
	}
	buf[0] = Marker(pos)

	mid := (n - 1) / 2
	d := mid - pos
	if d < 0 {
		d = -d
	}
	for j := 0; j < n-1; j++ {
		var chr byte
		if j >= mid+d || j < mid-d {
			chr = 1
		}
		buf[j+1] = chr + '0'
	}
}

// Marker returns the leading marker character for a stream position: 'A'+pos
// for the first 26 positions, then the sequence continues past 'Z' with a
// fixed offset of 71 so all 32 positions of a full stream stay distinct.
func Marker(pos int) byte {
	if pos < 26 {
		return byte(pos) + 65
	}
	return byte(pos) + 71
}
