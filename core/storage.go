// Persistent storage for configuration and quick messages.
// Records are stored at fixed offsets in a small byte-addressed non-volatile
// device (EEPROM, flash page, or a file on hosted targets). Every record
// carries a version byte, its payload size and a CRC so a torn write or a
// layout change is detected on load and treated as "no stored value".
package core

import "superkey/protocol"

// StorageBackend is the byte-level non-volatile storage abstraction
// implemented per target.
type StorageBackend interface {
	// ReadAt fills buf from the device starting at addr.
	ReadAt(addr int, buf []byte) error
	// WriteAt writes buf to the device starting at addr.
	WriteAt(addr int, buf []byte) error
	// Size returns the device capacity in bytes.
	Size() int
}

// Storage layout. The first byte is the layout version; bumping it
// invalidates every record at once after an incompatible reshuffle.
const (
	storageLayoutVersion byte = 1

	addrLayoutVersion = 0x0000
	addrConfig        = 0x0010
	addrQuickMsg      = 0x0100

	// recordHeaderSize is version(1) + size(2) + crc(2).
	recordHeaderSize = 5

	quickMsgSlotSize = 0x40

	// QuickMsgCount is the number of quick message slots.
	QuickMsgCount = 4

	// QuickMsgMaxLen is the longest storable quick message.
	QuickMsgMaxLen = quickMsgSlotSize - recordHeaderSize
)

// Storage reads and writes versioned records on a StorageBackend.
type Storage struct {
	b StorageBackend
}

// NewStorage wraps b. If the device's layout version byte does not match the
// current layout, the byte is rewritten; stale records then fail their CRC
// or version checks individually and read back as absent.
func NewStorage(b StorageBackend) (*Storage, error) {
	var v [1]byte
	if err := b.ReadAt(addrLayoutVersion, v[:]); err != nil {
		return nil, err
	}
	if v[0] != storageLayoutVersion {
		v[0] = storageLayoutVersion
		if err := b.WriteAt(addrLayoutVersion, v[:]); err != nil {
			return nil, err
		}
	}
	return &Storage{b: b}, nil
}

// loadRecord reads a record at addr and returns its payload, or ok=false if
// the record is absent, has a different version, exceeds maxSize or fails
// its CRC. Backend read errors also read as absent: a flaky device must
// never block startup, the caller just falls back to defaults.
func (s *Storage) loadRecord(addr int, version byte, maxSize int) ([]byte, bool) {
	var hdr [recordHeaderSize]byte
	if err := s.b.ReadAt(addr, hdr[:]); err != nil {
		return nil, false
	}
	if hdr[0] != version {
		return nil, false
	}
	size := int(hdr[1]) | int(hdr[2])<<8
	if size == 0 || size > maxSize {
		return nil, false
	}
	crc := uint16(hdr[3]) | uint16(hdr[4])<<8

	data := make([]byte, size)
	if err := s.b.ReadAt(addr+recordHeaderSize, data); err != nil {
		return nil, false
	}
	if protocol.CRC16(data) != crc {
		return nil, false
	}
	return data, true
}

// saveRecord writes a record at addr. The header goes last so a write torn
// between header and payload leaves a record that fails its CRC check
// rather than one that parses as valid.
func (s *Storage) saveRecord(addr int, version byte, data []byte) error {
	if err := s.b.WriteAt(addr+recordHeaderSize, data); err != nil {
		return err
	}
	crc := protocol.CRC16(data)
	hdr := [recordHeaderSize]byte{
		version,
		byte(len(data)), byte(len(data) >> 8),
		byte(crc), byte(crc >> 8),
	}
	return s.b.WriteAt(addr, hdr[:])
}

// invalidateRecord overwrites a record's version byte so it reads as absent.
func (s *Storage) invalidateRecord(addr int) error {
	return s.b.WriteAt(addr, []byte{0})
}

// LoadConfig returns the stored configuration payload for the given config
// version, or ok=false if none is stored.
func (s *Storage) LoadConfig(version byte) ([]byte, bool) {
	return s.loadRecord(addrConfig, version, addrQuickMsg-addrConfig-recordHeaderSize)
}

// SaveConfig stores the configuration payload.
func (s *Storage) SaveConfig(version byte, data []byte) error {
	return s.saveRecord(addrConfig, version, data)
}

// InvalidateConfig discards the stored configuration.
func (s *Storage) InvalidateConfig() error {
	return s.invalidateRecord(addrConfig)
}

// LoadQuickMsg returns the quick message in the given slot, or ok=false if
// the slot is empty.
func (s *Storage) LoadQuickMsg(slot int) (string, bool) {
	if slot < 0 || slot >= QuickMsgCount {
		return "", false
	}
	data, ok := s.loadRecord(addrQuickMsg+slot*quickMsgSlotSize, 1, QuickMsgMaxLen)
	if !ok {
		return "", false
	}
	return string(data), true
}

// SaveQuickMsg stores a quick message in the given slot.
func (s *Storage) SaveQuickMsg(slot int, msg string) error {
	if slot < 0 || slot >= QuickMsgCount || len(msg) == 0 || len(msg) > QuickMsgMaxLen {
		FailCode(FailCodeStorage)
	}
	return s.saveRecord(addrQuickMsg+slot*quickMsgSlotSize, 1, []byte(msg))
}

// InvalidateQuickMsg empties the given slot.
func (s *Storage) InvalidateQuickMsg(slot int) error {
	if slot < 0 || slot >= QuickMsgCount {
		FailCode(FailCodeStorage)
	}
	return s.invalidateRecord(addrQuickMsg + slot*quickMsgSlotSize)
}

// MemBackend is an in-memory StorageBackend used by tests and by targets
// without a non-volatile device.
type MemBackend struct {
	buf []byte
}

// NewMemBackend returns a zeroed in-memory backend of the given size.
func NewMemBackend(size int) *MemBackend {
	return &MemBackend{buf: make([]byte, size)}
}

func (m *MemBackend) ReadAt(addr int, buf []byte) error {
	if addr < 0 || addr+len(buf) > len(m.buf) {
		FailCode(FailCodeStorage)
	}
	copy(buf, m.buf[addr:])
	return nil
}

func (m *MemBackend) WriteAt(addr int, buf []byte) error {
	if addr < 0 || addr+len(buf) > len(m.buf) {
		FailCode(FailCodeStorage)
	}
	copy(m.buf[addr:], buf)
	return nil
}

func (m *MemBackend) Size() int {
	return len(m.buf)
}
