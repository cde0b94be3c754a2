package lazyslice

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Array can be interpreted two ways:
// - as byte slice
// - as serialized append-only array of byte slices
// It is parsed only when accessed as array and serialized only when accessed as bytes
type Array struct {
	bytes          []byte
	parsed         [][]byte
	maxNumElements int
}

type lenPrefixType uint16

// prefix of the serialized array is two bytes interpreted as big-endian uint16
// The highest 2 bits encode the size of the length of each element (0, 1, 2 or 4 bytes)
// The rest is the number of elements
const (
	DataLenBytes0  = uint16(0x00) << 14
	DataLenBytes8  = uint16(0x01) << 14
	DataLenBytes16 = uint16(0x02) << 14
	DataLenBytes32 = uint16(0x03) << 14

	DataLenMask  = uint16(0x03) << 14
	ArrayLenMask = ^DataLenMask
	MaxArrayLen  = int(ArrayLenMask) // 16383

	emptyArrayPrefix = lenPrefixType(0)
)

func (dl lenPrefixType) DataLenBytes() int {
	switch uint16(dl) & DataLenMask {
	case DataLenBytes8:
		return 1
	case DataLenBytes16:
		return 2
	case DataLenBytes32:
		return 4
	}
	return 0
}

func (dl lenPrefixType) NumElements() int {
	return int(uint16(dl) & ArrayLenMask)
}

func (dl lenPrefixType) Bytes() []byte {
	var ret [2]byte
	binary.BigEndian.PutUint16(ret[:], uint16(dl))
	return ret[:]
}

func ArrayFromBytes(data []byte, maxNumElements ...int) *Array {
	mx := MaxArrayLen
	if len(maxNumElements) > 0 {
		mx = maxNumElements[0]
	}
	return &Array{
		bytes:          data,
		maxNumElements: mx,
	}
}

// ParseArray parses data eagerly and returns an error instead of panicking on wrong data
func ParseArray(data []byte, maxNumElements ...int) (*Array, error) {
	ret := ArrayFromBytes(data, maxNumElements...)
	var err error
	if ret.parsed, err = parseArray(data, ret.maxNumElements); err != nil {
		return nil, err
	}
	return ret, nil
}

func EmptyArray(maxNumElements ...int) *Array {
	return ArrayFromBytes(emptyArrayPrefix.Bytes(), maxNumElements...)
}

// MakeArray makes an array from elements. Each element must be nil, []byte, byte, string
// or interface{ Bytes() []byte }
func MakeArray(elems ...interface{}) *Array {
	ret := EmptyArray()
	for _, e := range elems {
		switch e := e.(type) {
		case nil:
			ret.Push(nil)
		case []byte:
			ret.Push(e)
		case byte:
			ret.Push([]byte{e})
		case string:
			ret.Push([]byte(e))
		case interface{ Bytes() []byte }:
			ret.Push(e.Bytes())
		default:
			panic(fmt.Sprintf("MakeArray: unsupported element type %T", e))
		}
	}
	return ret
}

func (a *Array) Push(data []byte) int {
	a.ensureParsed()
	if len(a.parsed) >= a.maxNumElements {
		panic("Array.Push: too many elements")
	}
	a.parsed = append(a.parsed, data)
	a.bytes = nil // invalidate bytes
	return len(a.parsed) - 1
}

func (a *Array) ForEach(fun func(i int, data []byte) bool) {
	for i := 0; i < a.NumElements(); i++ {
		if !fun(i, a.At(i)) {
			break
		}
	}
}

func (a *Array) IsEmpty() bool {
	return a.NumElements() == 0
}

func (a *Array) At(idx int) []byte {
	a.ensureParsed()
	return a.parsed[idx]
}

func (a *Array) NumElements() int {
	a.ensureParsed()
	return len(a.parsed)
}

func (a *Array) Bytes() []byte {
	a.ensureBytes()
	return a.bytes
}

func (a *Array) ensureParsed() {
	if a.parsed != nil {
		return
	}
	var err error
	if a.parsed, err = parseArray(a.bytes, a.maxNumElements); err != nil {
		panic(err)
	}
}

func (a *Array) ensureBytes() {
	if a.bytes != nil {
		return
	}
	var buf bytes.Buffer
	if err := encodeArray(a.parsed, &buf); err != nil {
		panic(err)
	}
	a.bytes = buf.Bytes()
}

func calcLenPrefix(data [][]byte) (lenPrefixType, error) {
	if len(data) > MaxArrayLen {
		return 0, errors.New("too long data")
	}
	var dl uint16
	for _, d := range data {
		t := DataLenBytes0
		switch {
		case uint64(len(d)) > math.MaxUint32:
			return 0, errors.New("data can't be longer than MaxUint32")
		case len(d) > math.MaxUint16:
			t = DataLenBytes32
		case len(d) > math.MaxUint8:
			t = DataLenBytes16
		case len(d) > 0:
			t = DataLenBytes8
		}
		if dl < t {
			dl = t
		}
	}
	return lenPrefixType(dl | uint16(len(data))), nil
}

func encodeArray(data [][]byte, buf *bytes.Buffer) error {
	prefix, err := calcLenPrefix(data)
	if err != nil {
		return err
	}
	buf.Write(prefix.Bytes())
	numDataLenBytes := prefix.DataLenBytes()
	if numDataLenBytes == 0 {
		return nil // all empty
	}
	var lenBuf [4]byte
	for _, d := range data {
		switch numDataLenBytes {
		case 1:
			lenBuf[0] = byte(len(d))
		case 2:
			binary.BigEndian.PutUint16(lenBuf[:2], uint16(len(d)))
		case 4:
			binary.BigEndian.PutUint32(lenBuf[:4], uint32(len(d)))
		}
		buf.Write(lenBuf[:numDataLenBytes])
		buf.Write(d)
	}
	return nil
}

// decodeElement cuts the element from the data without copying
func decodeElement(buf []byte, numDataLenBytes int) ([]byte, []byte, error) {
	if len(buf) < numDataLenBytes {
		return nil, nil, errors.New("unexpected EOF")
	}
	var sz int
	switch numDataLenBytes {
	case 1:
		sz = int(buf[0])
	case 2:
		sz = int(binary.BigEndian.Uint16(buf[:2]))
	case 4:
		sz = int(binary.BigEndian.Uint32(buf[:4]))
	}
	if len(buf) < numDataLenBytes+sz {
		return nil, nil, errors.New("unexpected EOF")
	}
	return buf[numDataLenBytes+sz:], buf[numDataLenBytes : numDataLenBytes+sz], nil
}

func parseArray(data []byte, maxNumElements int) ([][]byte, error) {
	if len(data) < 2 {
		return nil, errors.New("unexpected EOF")
	}
	prefix := lenPrefixType(binary.BigEndian.Uint16(data[:2]))
	if prefix.NumElements() > maxNumElements {
		return nil, fmt.Errorf("parseArray: number of elements in the prefix %d is larger than maxNumElements %d",
			prefix.NumElements(), maxNumElements)
	}
	ret := make([][]byte, prefix.NumElements())
	rest := data[2:]
	var err error
	for i := range ret {
		if rest, ret[i], err = decodeElement(rest, prefix.DataLenBytes()); err != nil {
			return nil, err
		}
	}
	if len(rest) != 0 {
		return nil, errors.New("serialization error: not all bytes were consumed")
	}
	return ret, nil
}
