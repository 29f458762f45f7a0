package codec

import "errors"

// ErrNotSerializable is returned when a value cannot be reduced to the
// canonical wire form (spec: CodecError::NotSerializable).
var ErrNotSerializable = errors.New("codec: value is not serializable")
