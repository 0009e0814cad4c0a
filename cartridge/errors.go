package cartridge

import "fmt"

// MalformedHeaderError is returned when ROM data is too short to contain a
// valid header. An unrecognized type byte is not reported with it: that
// decodes to UnknownType without an error. It is recoverable: callers fall
// back to treating the cartridge as NoMBC.
type MalformedHeaderError struct {
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed cartridge header: %s", e.Reason)
}

// UnsupportedError is returned for a recognized-but-unimplemented cartridge
// feature (MBC2/MBC4/MBC5, RTC latching). Callers log it at warn level and
// fall back to the nearest stub; it is never fatal.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported cartridge feature: %s", e.Feature)
}

// NewMalformedHeader builds a MalformedHeaderError with the given reason.
func NewMalformedHeader(reason string) error {
	return &MalformedHeaderError{Reason: reason}
}

// NewUnsupported builds an UnsupportedError for the given feature.
func NewUnsupported(feature string) error {
	return &UnsupportedError{Feature: feature}
}
