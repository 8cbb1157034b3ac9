package pzip

import (
	"encoding/binary"
	"time"
)

// Signatures for the records this engine produces.
const (
	sigLocalFileHeader  uint32 = 0x04034b50
	sigCentralDirHeader uint32 = 0x02014b50
	sigEOCD             uint32 = 0x06054b50
	sigZip64EOCDRecord  uint32 = 0x06064b50
	sigZip64EOCDLocator uint32 = 0x07064b50
)

const (
	zip64Sentinel32 = 0xFFFFFFFF
	zip64Sentinel16 = 0xFFFF

	versionNeededDefault = 20
	versionNeededZip64   = 45
	versionMadeByUnix    = 3 << 8 // high byte 3 = UNIX, low byte = spec version

	extraIDUnixTimestamp = 0x5455
	extraIDZip64         = 0x0001
)

// dosDateTime converts t to the MS-DOS date/time pair used in local and
// central directory headers: seconds truncated to the nearest even
// second, clamped to the representable 1980-2107 range.
func dosDateTime(t time.Time) (date uint16, timeField uint16) {
	if t.Year() < 1980 || t.Year() > 2107 {
		t = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	sec := t.Second()
	sec -= sec % 2
	date = uint16(t.Day()) | uint16(t.Month())<<5 | uint16(t.Year()-1980)<<9
	timeField = uint16(sec/2) | uint16(t.Minute())<<5 | uint16(t.Hour())<<11
	return
}

// generalPurposeFlag computes bit 11 (UTF-8 name) for any name containing
// a non-ASCII byte. Bit 3 (data descriptor) is never set — this engine
// knows every size and CRC before the local header is emitted.
func generalPurposeFlag(name string) uint16 {
	for i := 0; i < len(name); i++ {
		if name[i] > 0x7F {
			return 1 << 11
		}
	}
	return 0
}

// versionNeeded returns 45 when zip64 is true, 20 otherwise.
func versionNeeded(zip64 bool) uint16 {
	if zip64 {
		return versionNeededZip64
	}
	return versionNeededDefault
}

// unixTimestampExtra builds extra field 0x5455 carrying mtime (and
// optionally atime/ctime) at one-second precision.
func unixTimestampExtra(mtime time.Time, atime, ctime *time.Time) []byte {
	flags := byte(1) // mtime present
	times := []int32{int32(mtime.Unix())}
	if atime != nil {
		flags |= 2
		times = append(times, int32(atime.Unix()))
	}
	if ctime != nil {
		flags |= 4
		times = append(times, int32(ctime.Unix()))
	}

	body := make([]byte, 1+4*len(times))
	body[0] = flags
	for i, t := range times {
		binary.LittleEndian.PutUint32(body[1+4*i:], uint32(t))
	}
	return extraField(extraIDUnixTimestamp, body)
}

// zip64Fields holds the 64-bit values that might need to escape their
// 32-bit local/central-directory slots.
type zip64Fields struct {
	usize, csize, localHeaderOffset uint64
	diskStart                       uint32
	hasDiskStart                    bool
}

// needsZip64 reports whether any field exceeds the 32-bit sentinel
// threshold, or forced is true — tests set forced to exercise the ZIP64
// encode path without gigabyte-sized fixtures (driven by Options' internal
// flagWriteZip64Always, see bitflag.go).
func (z zip64Fields) needsZip64(forced bool) bool {
	return forced || z.usize >= zip64Sentinel32 || z.csize >= zip64Sentinel32 || z.localHeaderOffset >= zip64Sentinel32
}

// zip64Extra builds extra field 0x0001, including the fields whose 32-bit
// slot holds the sentinel (or every size/offset field when forced is true),
// in the fixed order usize, csize, local_header_offset, disk_start.
func zip64Extra(z zip64Fields, forced bool) []byte {
	var body []byte
	if forced || z.usize >= zip64Sentinel32 {
		body = appendUint64(body, z.usize)
	}
	if forced || z.csize >= zip64Sentinel32 {
		body = appendUint64(body, z.csize)
	}
	if forced || z.localHeaderOffset >= zip64Sentinel32 {
		body = appendUint64(body, z.localHeaderOffset)
	}
	if z.hasDiskStart {
		body = appendUint32(body, z.diskStart)
	}
	if len(body) == 0 {
		return nil
	}
	return extraField(extraIDZip64, body)
}

// digestExtra builds the optional strong-digest vendor extra: 1 algorithm
// byte + the raw digest.
func digestExtra(algo DigestAlgorithm, digest []byte) []byte {
	if algo == DigestNone || len(digest) == 0 {
		return nil
	}
	body := append([]byte{byte(algo)}, digest...)
	return extraField(digestExtraID, body)
}

func extraField(id uint16, body []byte) []byte {
	buf := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint16(buf[0:], id)
	binary.LittleEndian.PutUint16(buf[2:], uint16(len(body)))
	copy(buf[4:], body)
	return buf
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

// localFileHeader serializes a local file header (signature 0x04034b50,
// 30-byte fixed part + name + extras). csize and usize are each written as
// the 32-bit sentinel when the ZIP64 extra carries that field (it does not
// fit in 32 bits, or forced is true); the authoritative 64-bit values live
// in the extra.
func localFileHeader(name string, method uint16, crc32 uint32, csize, usize uint64, mtime time.Time, extras []byte, forced bool) []byte {
	date, timeField := dosDateTime(mtime)
	flags := generalPurposeFlag(name)
	zip64 := forced || csize >= zip64Sentinel32 || usize >= zip64Sentinel32
	ver := versionNeeded(zip64)

	wireCSize := uint32(csize)
	wireUSize := uint32(usize)
	if forced || usize >= zip64Sentinel32 {
		wireUSize = zip64Sentinel32
	}
	if forced || csize >= zip64Sentinel32 {
		wireCSize = zip64Sentinel32
	}

	nameBytes := []byte(name)
	buf := make([]byte, 30+len(nameBytes)+len(extras))
	binary.LittleEndian.PutUint32(buf[0:], sigLocalFileHeader)
	binary.LittleEndian.PutUint16(buf[4:], ver)
	binary.LittleEndian.PutUint16(buf[6:], flags)
	binary.LittleEndian.PutUint16(buf[8:], method)
	binary.LittleEndian.PutUint16(buf[10:], timeField)
	binary.LittleEndian.PutUint16(buf[12:], date)
	binary.LittleEndian.PutUint32(buf[14:], crc32)
	binary.LittleEndian.PutUint32(buf[18:], wireCSize)
	binary.LittleEndian.PutUint32(buf[22:], wireUSize)
	binary.LittleEndian.PutUint16(buf[26:], uint16(len(nameBytes)))
	binary.LittleEndian.PutUint16(buf[28:], uint16(len(extras)))
	copy(buf[30:], nameBytes)
	copy(buf[30+len(nameBytes):], extras)
	return buf
}

// centralDirHeader serializes one central directory header (signature
// 0x02014b50, 46-byte fixed part + name + extras, comment always empty).
func centralDirHeader(name string, method uint16, crc32 uint32, csize, usize uint64, localHeaderOffset uint64, mtime time.Time, externalAttrs uint32, extras []byte, forced bool) []byte {
	date, timeField := dosDateTime(mtime)
	flags := generalPurposeFlag(name)
	zip64 := forced || csize >= zip64Sentinel32 || usize >= zip64Sentinel32 || localHeaderOffset >= zip64Sentinel32
	ver := versionNeeded(zip64)

	wireCSize := uint32(csize)
	wireUSize := uint32(usize)
	wireOffset := uint32(localHeaderOffset)
	if forced || usize >= zip64Sentinel32 {
		wireUSize = zip64Sentinel32
	}
	if forced || csize >= zip64Sentinel32 {
		wireCSize = zip64Sentinel32
	}
	if forced || localHeaderOffset >= zip64Sentinel32 {
		wireOffset = zip64Sentinel32
	}

	nameBytes := []byte(name)
	buf := make([]byte, 46+len(nameBytes)+len(extras))
	binary.LittleEndian.PutUint32(buf[0:], sigCentralDirHeader)
	binary.LittleEndian.PutUint16(buf[4:], versionMadeByUnix|ver)
	binary.LittleEndian.PutUint16(buf[6:], ver)
	binary.LittleEndian.PutUint16(buf[8:], flags)
	binary.LittleEndian.PutUint16(buf[10:], method)
	binary.LittleEndian.PutUint16(buf[12:], timeField)
	binary.LittleEndian.PutUint16(buf[14:], date)
	binary.LittleEndian.PutUint32(buf[16:], crc32)
	binary.LittleEndian.PutUint32(buf[20:], wireCSize)
	binary.LittleEndian.PutUint32(buf[24:], wireUSize)
	binary.LittleEndian.PutUint16(buf[28:], uint16(len(nameBytes)))
	binary.LittleEndian.PutUint16(buf[30:], uint16(len(extras)))
	binary.LittleEndian.PutUint16(buf[32:], 0) // comment length, always empty
	binary.LittleEndian.PutUint16(buf[34:], 0) // disk number start
	binary.LittleEndian.PutUint16(buf[36:], 0) // internal file attributes
	binary.LittleEndian.PutUint32(buf[38:], externalAttrs)
	binary.LittleEndian.PutUint32(buf[42:], wireOffset)
	copy(buf[46:], nameBytes)
	copy(buf[46+len(nameBytes):], extras)
	return buf
}

// eocd serializes the end-of-central-directory record (signature
// 0x06054b50, 22 bytes, comment always empty). count, cdSize and cdStart
// are each written as their 16/32-bit sentinel when the value does not fit
// below it; a value that fits is written as is.
func eocd(count int, cdSize, cdStart uint64) []byte {
	wireCount := uint16(count)
	wireCDSize := uint32(cdSize)
	wireCDStart := uint32(cdStart)
	if count >= zip64Sentinel16 {
		wireCount = zip64Sentinel16
	}
	if cdSize >= zip64Sentinel32 {
		wireCDSize = zip64Sentinel32
	}
	if cdStart >= zip64Sentinel32 {
		wireCDStart = zip64Sentinel32
	}

	buf := make([]byte, 22)
	binary.LittleEndian.PutUint32(buf[0:], sigEOCD)
	binary.LittleEndian.PutUint16(buf[4:], 0)          // disk number
	binary.LittleEndian.PutUint16(buf[6:], 0)          // disk with CD start
	binary.LittleEndian.PutUint16(buf[8:], wireCount)  // entries on this disk
	binary.LittleEndian.PutUint16(buf[10:], wireCount) // total entries
	binary.LittleEndian.PutUint32(buf[12:], wireCDSize)
	binary.LittleEndian.PutUint32(buf[16:], wireCDStart)
	binary.LittleEndian.PutUint16(buf[20:], 0) // comment length, always empty
	return buf
}

// zip64EOCDRecord serializes the ZIP64 end-of-central-directory record
// (signature 0x06064b50, 56 bytes, no extensible data).
func zip64EOCDRecord(count int, cdSize, cdStart uint64) []byte {
	buf := make([]byte, 56)
	binary.LittleEndian.PutUint32(buf[0:], sigZip64EOCDRecord)
	binary.LittleEndian.PutUint64(buf[4:], 56-12) // size of this record, excluding signature+this field
	binary.LittleEndian.PutUint16(buf[12:], versionMadeByUnix|uint16(versionNeededZip64))
	binary.LittleEndian.PutUint16(buf[14:], versionNeededZip64)
	binary.LittleEndian.PutUint32(buf[16:], 0)             // disk number
	binary.LittleEndian.PutUint32(buf[20:], 0)             // disk with CD start
	binary.LittleEndian.PutUint64(buf[24:], uint64(count)) // entries on this disk
	binary.LittleEndian.PutUint64(buf[32:], uint64(count)) // total entries
	binary.LittleEndian.PutUint64(buf[40:], cdSize)
	binary.LittleEndian.PutUint64(buf[48:], cdStart)
	return buf
}

// zip64EOCDLocator serializes the ZIP64 EOCD locator (signature
// 0x07064b50, 20 bytes).
func zip64EOCDLocator(zip64EOCDOffset uint64) []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:], sigZip64EOCDLocator)
	binary.LittleEndian.PutUint32(buf[4:], 0) // disk with the ZIP64 EOCD record
	binary.LittleEndian.PutUint64(buf[8:], zip64EOCDOffset)
	binary.LittleEndian.PutUint32(buf[16:], 1) // total number of disks
	return buf
}

// externalAttrs encodes a UNIX file mode into the high 16 bits of
// external_attributes.
func externalAttrs(mode uint32) uint32 {
	return mode << 16
}
