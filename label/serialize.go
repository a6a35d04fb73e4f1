package label

import (
	"encoding/binary"
	"sort"
)

// Encode returns the canonical external byte form of l: a deterministic,
// length-prefixed encoding of the (sorted, deduplicated) confidentiality
// and integrity tag sets. Two Labels that are Equal always Encode to the
// same bytes, and vice versa.
//
// This is a narrow, closed-over-this-process wire format (it never
// crosses a service boundary — it only feeds the label-readback ABI calls
// in runtime/proxy.go), so it is hand-rolled on encoding/binary rather
// than reached for the teacher's protobuf stack (lnwire's wire messages):
// protobuf earns its keep when a schema must evolve across independently
// deployed services, which does not apply to a same-process capability
// readback.
func (l Label) Encode() []byte {
	c := sortedStrings(l.Confidentiality)
	i := sortedStrings(l.Integrity)

	buf := make([]byte, 0, 8+8*len(c)+8*len(i))
	buf = appendTagSet(buf, c)
	buf = appendTagSet(buf, i)
	return buf
}

// EncodedLen returns len(l.Encode()) without allocating the encoding.
// It must dedupe exactly as Encode does: a label whose tag sets carry
// duplicates encodes each distinct tag once, not once per occurrence.
func (l Label) EncodedLen() int {
	n := 4
	for _, t := range sortedStrings(l.Confidentiality) {
		n += 4 + len(t)
	}
	n += 4
	for _, t := range sortedStrings(l.Integrity) {
		n += 4 + len(t)
	}
	return n
}

func sortedStrings(ts TagSet) []string {
	seen := make(map[string]struct{}, len(ts))
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		s := string(t)
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func appendTagSet(buf []byte, tags []string) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(tags)))
	buf = append(buf, lenBuf[:]...)
	for _, t := range tags {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(t)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, t...)
	}
	return buf
}

// Decode parses the canonical form produced by Encode. Within this
// repository it is called only by tests.
func Decode(data []byte) (Label, bool) {
	c, rest, ok := decodeTagSet(data)
	if !ok {
		return Label{}, false
	}
	i, rest, ok := decodeTagSet(rest)
	if !ok || len(rest) != 0 {
		return Label{}, false
	}
	return Label{Confidentiality: c, Integrity: i}, true
}

func decodeTagSet(data []byte) (TagSet, []byte, bool) {
	if len(data) < 4 {
		return nil, nil, false
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	tags := make(TagSet, 0, n)
	for j := uint32(0); j < n; j++ {
		if len(data) < 4 {
			return nil, nil, false
		}
		tl := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < tl {
			return nil, nil, false
		}
		tags = append(tags, Tag(data[:tl]))
		data = data[tl:]
	}
	return tags, data, true
}
