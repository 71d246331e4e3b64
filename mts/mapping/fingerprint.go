package mapping

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/mr-tron/base58"
)

// Fingerprint computes a deterministic digest of a tree's resolved structure:
// every mapping's type, distance and meta chain, every attribute's name and
// value type, and the complete alias, convention, value-routing and mirror
// wiring. Two builds from the same declarations produce the same fingerprint;
// declared instance values are excluded, so re-tagging an element does not
// change it.
func Fingerprint(t *Tree) string {
	h := sha256.New()
	position := make(map[*Mapping]int, t.Size())
	for i := 0; i < t.Size(); i++ {
		position[t.Get(i)] = i
	}
	for i := 0; i < t.Size(); i++ {
		m := t.Get(i)
		h.Write([]byte("\nm:"))
		writeString(h, m.typeName())
		writeInt(h, m.distance)
		for _, meta := range m.metaTypes {
			writeString(h, meta)
		}
		h.Write([]byte("\na:"))
		for j := 0; j < m.attrs.Size(); j++ {
			attr := m.attrs.Get(j)
			writeString(h, attr.Name)
			writeString(h, attr.Type.String())
			writeInt(h, m.aliasMappings[j])
			writeInt(h, m.conventionMappings[j])
			writeInt(h, m.valueMappings[j])
			source := -1
			if m.valueSources[j] != nil {
				source = position[m.valueSources[j]]
			}
			writeInt(h, source)
		}
		h.Write([]byte("\nms:"))
		for j := 0; j < m.mirrorSets.Size(); j++ {
			set := m.mirrorSets.Get(j)
			writeInt(h, set.Size())
			for _, member := range set.Members() {
				writeInt(h, member)
			}
		}
		if m.synthesizable {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	sum := h.Sum(nil)
	return base58.Encode(sum[:16])
}

func writeString(w io.Writer, s string) {
	writeInt(w, len(s))
	io.WriteString(w, s)
}

func writeInt(w io.Writer, v int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(int64(v)))
	w.Write(buf[:])
}
