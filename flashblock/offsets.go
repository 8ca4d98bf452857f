package flashblock

import (
	ssz "github.com/ferranbt/fastssz"
)

// variableSections validates the offsets stored in the fixed region of a
// container at the given positions and returns the variable-size sections
// they point to, in order.
func variableSections(
	container string,
	buf []byte,
	fixedSize int,
	positions ...int,
) ([][]byte, error) {
	if len(buf) < fixedSize {
		return nil, errMinSize(container, fixedSize, len(buf))
	}

	upper := uint64(len(buf))
	offsets := make([]uint64, 0, len(positions)+1)
	for idx, pos := range positions {
		offset := ssz.ReadOffset(buf[pos : pos+bytesPerLengthOffset])

		lower := uint64(fixedSize)
		if idx > 0 {
			lower = offsets[idx-1]
		}
		if idx == 0 && offset != lower {
			return nil, errOffset(container, pos, offset, lower, lower)
		}
		if offset < lower || offset > upper {
			return nil, errOffset(container, pos, offset, lower, upper)
		}

		offsets = append(offsets, offset)
	}
	offsets = append(offsets, upper)

	sections := make([][]byte, 0, len(positions))
	for idx := range positions {
		sections = append(sections, buf[offsets[idx]:offsets[idx+1]])
	}

	return sections, nil
}

// dynamicListItems splits an encoded list of variable-size items: a table of
// offsets (one per item) followed by the items themselves.
func dynamicListItems(container string, buf []byte) ([][]byte, error) {
	if len(buf) == 0 {
		return [][]byte{}, nil
	}
	if len(buf) < bytesPerLengthOffset {
		return nil, errMinSize(container, bytesPerLengthOffset, len(buf))
	}

	upper := uint64(len(buf))
	first := ssz.ReadOffset(buf[0:bytesPerLengthOffset])
	if first == 0 || first%bytesPerLengthOffset != 0 || first > upper {
		return nil, errOffset(container, 0, first, bytesPerLengthOffset, upper)
	}

	count := int(first / bytesPerLengthOffset)
	offsets := make([]uint64, 0, count+1)
	offsets = append(offsets, first)
	for idx := 1; idx < count; idx++ {
		pos := idx * bytesPerLengthOffset
		offset := ssz.ReadOffset(buf[pos : pos+bytesPerLengthOffset])
		if offset < offsets[idx-1] || offset > upper {
			return nil, errOffset(container, pos, offset, offsets[idx-1], upper)
		}
		offsets = append(offsets, offset)
	}
	offsets = append(offsets, upper)

	items := make([][]byte, 0, count)
	for idx := 0; idx < count; idx++ {
		items = append(items, buf[offsets[idx]:offsets[idx+1]])
	}

	return items, nil
}
