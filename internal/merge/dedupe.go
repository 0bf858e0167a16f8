package merge

import "github.com/zeebo/xxh3"

// fieldSep separates fields inside the hashed key so ["ab","c"] and ["a","bc"]
// never collide structurally. 0x1f (unit separator) cannot appear in parsed
// CSV cells produced by sane exports.
const fieldSep = 0x1f

// deduper tracks 64-bit xxh3 hashes of emitted rows so duplicates can be
// dropped in O(1) per row without retaining row contents.
type deduper struct {
	seen map[uint64]struct{}
	buf  []byte
}

func newDeduper() *deduper {
	return &deduper{seen: make(map[uint64]struct{}, 1024)}
}

// isDup reports whether fields was seen before, recording it if not.
func (d *deduper) isDup(fields []string) bool {
	d.buf = d.buf[:0]
	for i, f := range fields {
		if i > 0 {
			d.buf = append(d.buf, fieldSep)
		}
		d.buf = append(d.buf, f...)
	}
	h := xxh3.Hash(d.buf)
	if _, ok := d.seen[h]; ok {
		return true
	}
	d.seen[h] = struct{}{}
	return false
}
