package rlp

import (
	"fmt"

	"github.com/blockful-io/daoleaks-mpt/mptfail"
)

// ListTable is the per-field table spec.md §3 describes: parallel Offset,
// Length, and Type slices of capacity maxFields, plus NumFields <=
// maxFields. For i >= NumFields every slot is the zero value (0, 0,
// String), matching the "unused slots are zeroed" invariant the rest of the
// verifier relies on when it only ever touches i < NumFields.
//
// For a string field, Offset points at the first payload byte. For a list
// field, Offset points at the nested list's own RLP header (not its
// payload) and Length spans header+payload together. This asymmetry is
// deliberate: a string field's Offset/Length is exactly what a caller needs
// to read the value, while a list field must be re-decoded by a nested
// DecodeHeader call, so its table entry points at the header it needs to
// start from.
type ListTable struct {
	Offset    []int
	Length    []int
	Type      []DataType
	NumFields int
}

// DecodeList decodes input's leading RLP list into a table of at most
// maxFields entries. It returns an error if input's leading header is not a
// list, if decoding any field overruns the list's declared payload, or if
// the payload is not exactly consumed after maxFields iterations (too many
// fields for the caller's table).
func DecodeList(input []byte, maxFields int) (ListTable, error) {
	header, err := DecodeHeader(input)
	if err != nil {
		return ListTable{}, err
	}
	if header.Type != List {
		return ListTable{}, fmt.Errorf("decode list: leading byte describes a string: %w", mptfail.ErrNotString)
	}

	table := ListTable{
		Offset: make([]int, maxFields),
		Length: make([]int, maxFields),
		Type:   make([]DataType, maxFields),
	}

	payloadEnd := header.End()
	if payloadEnd > len(input) {
		return ListTable{}, fmt.Errorf("decode list: payload [%d,%d) exceeds input of length %d: %w",
			header.Offset, payloadEnd, len(input), mptfail.ErrHeaderOverrun)
	}
	pos := header.Offset

	i := 0
	for ; i < maxFields && pos < payloadEnd; i++ {
		itemHeader, err := DecodeHeader(input[pos:payloadEnd])
		if err != nil {
			return ListTable{}, fmt.Errorf("decode list: field %d: %w", i, err)
		}
		if itemHeader.End() > payloadEnd-pos {
			return ListTable{}, fmt.Errorf("decode list: field %d overruns payload: %w", i, mptfail.ErrHeaderOverrun)
		}

		switch itemHeader.Type {
		case String:
			table.Offset[i] = pos + itemHeader.Offset
			table.Length[i] = itemHeader.Length
		case List:
			table.Offset[i] = pos
			table.Length[i] = itemHeader.End()
		}
		table.Type[i] = itemHeader.Type

		pos += itemHeader.End()
	}
	table.NumFields = i

	if i == maxFields && pos < payloadEnd {
		return ListTable{}, fmt.Errorf("decode list: more than %d fields: %w", maxFields, mptfail.ErrListOverrun)
	}
	if pos != payloadEnd {
		return ListTable{}, fmt.Errorf("decode list: payload left %d bytes unconsumed after %d fields: %w",
			payloadEnd-pos, i, mptfail.ErrListUnderrun)
	}

	return table, nil
}

// DecodeSmallList is DecodeList specialised to lists whose every item is a
// string shorter than 56 bytes (single-byte RLP header, prefix byte < 0xb8).
// Every non-leaf internal node of an Ethereum storage proof satisfies this —
// each branch slot holds either an empty string (0x80) or a 32-byte child
// hash (0xa0) — so callers that know they are decoding such a node can skip
// the general long-length-prefix handling DecodeList carries for the
// leaf/account case.
func DecodeSmallList(input []byte, maxFields int) (ListTable, error) {
	header, err := DecodeHeader(input)
	if err != nil {
		return ListTable{}, err
	}
	if header.Type != List {
		return ListTable{}, fmt.Errorf("decode small list: leading byte describes a string: %w", mptfail.ErrNotString)
	}

	table := ListTable{
		Offset: make([]int, maxFields),
		Length: make([]int, maxFields),
		Type:   make([]DataType, maxFields),
	}

	payloadEnd := header.End()
	pos := header.Offset

	i := 0
	for ; i < maxFields && pos < payloadEnd; i++ {
		if pos >= len(input) {
			return ListTable{}, fmt.Errorf("decode small list: field %d: %w", i, mptfail.ErrHeaderOverrun)
		}
		p := input[pos]
		if p >= 0xb8 {
			return ListTable{}, fmt.Errorf("decode small list: field %d prefix %#x is not a short string: %w",
				i, p, mptfail.ErrSmallListItem)
		}

		var itemLen, itemOff int
		if p < 0x80 {
			itemOff, itemLen = 0, 1
		} else {
			itemOff, itemLen = 1, int(p)-0x80
		}
		if pos+itemOff+itemLen > payloadEnd {
			return ListTable{}, fmt.Errorf("decode small list: field %d overruns payload: %w", i, mptfail.ErrHeaderOverrun)
		}

		table.Offset[i] = pos + itemOff
		table.Length[i] = itemLen
		table.Type[i] = String

		pos += itemOff + itemLen
	}
	table.NumFields = i

	if i == maxFields && pos < payloadEnd {
		return ListTable{}, fmt.Errorf("decode small list: more than %d fields: %w", maxFields, mptfail.ErrListOverrun)
	}
	if pos != payloadEnd {
		return ListTable{}, fmt.Errorf("decode small list: payload left %d bytes unconsumed after %d fields: %w",
			payloadEnd-pos, i, mptfail.ErrListUnderrun)
	}

	return table, nil
}
