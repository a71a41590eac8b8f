package logbridge

import (
	"strings"

	"github.com/Station-Manager/errors"
)

// Mask holds, per backend tag, the lowest tier that is recorded. A zero
// entry disables the tag.
type Mask [TagFatal + 1]int

// ParseMask parses a DbgLog mask such as "F1E1W1I1D1": a tag letter followed
// by the lowest recorded tier. Tags missing from s are disabled.
func ParseMask(s string) (Mask, error) {
	const op errors.Op = "logbridge.ParseMask"
	var m Mask
	s = strings.TrimSpace(s)
	if len(s)%2 != 0 {
		return m, errors.New(op).Msg(errMsgMask)
	}
	for i := 0; i < len(s); i += 2 {
		tag, ok := ParseTag(s[i : i+1])
		if !ok {
			return m, errors.New(op).Msg(errMsgMask)
		}
		tier := int(s[i+1] - '0')
		if tier < MinTier || tier > MaxTier {
			return m, errors.New(op).Msg(errMsgMask)
		}
		m[tag] = tier
	}
	return m, nil
}

// MustParseMask is like ParseMask but panics on error.
func MustParseMask(s string) Mask {
	m, err := ParseMask(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Allows reports whether a (tag, tier) pair passes the mask.
func (m Mask) Allows(tag Tag, tier int) bool {
	if !tag.Valid() {
		return false
	}
	lowest := m[tag]
	return lowest > 0 && tier >= lowest
}

// String renders m in DbgLog notation, most severe tag first.
func (m Mask) String() string {
	var sb strings.Builder
	for i := len(Tags) - 1; i >= 0; i-- {
		tag := Tags[i]
		if m[tag] > 0 {
			sb.WriteString(tag.Code(m[tag]))
		}
	}
	return sb.String()
}
