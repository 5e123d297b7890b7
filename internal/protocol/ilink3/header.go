package ilink3

import "encoding/binary"

// DecodeHeader reads the 8-byte SBE message header from the front of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrIncomplete
	}
	return Header{
		BlockLength: binary.LittleEndian.Uint16(buf[0:2]),
		TemplateID:  binary.LittleEndian.Uint16(buf[2:4]),
		SchemaID:    binary.LittleEndian.Uint16(buf[4:6]),
		Version:     binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

// EncodeHeader writes h into the front of dst, returning HeaderSize.
func EncodeHeader(dst []byte, h Header) int {
	binary.LittleEndian.PutUint16(dst[0:2], h.BlockLength)
	binary.LittleEndian.PutUint16(dst[2:4], h.TemplateID)
	binary.LittleEndian.PutUint16(dst[4:6], h.SchemaID)
	binary.LittleEndian.PutUint16(dst[6:8], h.Version)
	return HeaderSize
}

func fixedString(buf []byte) string {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

func putFixedString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
