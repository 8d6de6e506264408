package edgegate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ByteRange is an inclusive (start, end) pair of byte offsets.
type ByteRange struct {
	Start uint32
	End   uint32
}

const rangeUnitPrefix = "bytes="

// ParseRangeHeader parses a Range header value of the form
// "bytes=start1-end1,start2-end2,...". An empty start means 0 and an empty
// end means the maximum offset, so suffix forms like "bytes=-500" and open
// forms like "bytes=500-" parse to concrete pairs. Order is preserved.
func ParseRangeHeader(header string) ([]ByteRange, error) {
	if !strings.HasPrefix(header, rangeUnitPrefix) {
		return nil, fmt.Errorf("range header must use the bytes unit: %q", header)
	}

	parts := strings.Split(header[len(rangeUnitPrefix):], ",")
	ranges := make([]ByteRange, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)

		dash := strings.IndexByte(part, '-')
		if dash < 0 {
			return nil, fmt.Errorf("range %q: missing separator", part)
		}

		startStr, endStr := part[:dash], part[dash+1:]

		var start uint64
		if startStr != "" {
			v, err := strconv.ParseUint(startStr, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("range start %q: %w", startStr, err)
			}
			start = v
		}

		var end uint64 = math.MaxUint32
		if endStr != "" {
			v, err := strconv.ParseUint(endStr, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("range end %q: %w", endStr, err)
			}
			end = v
		}

		ranges = append(ranges, ByteRange{Start: uint32(start), End: uint32(end)})
	}

	return ranges, nil
}

// MatchRanges cross-checks the range list carried by a verified token
// against the client's Range header. An empty signed list allows the
// request unconditionally; the header, if any, is left to the file server.
// A non-empty signed list demands a header whose parsed sequence is
// identical element-wise: same count, same offsets, same order. Byte-exact
// equality is the security boundary, so a token signed for one subrange
// can never be replayed for the full object or a different subrange.
//
// The zero Reason means the check passed.
func MatchRanges(signed []ByteRange, rangeHeader string) Reason {
	if len(signed) == 0 {
		return ""
	}

	if rangeHeader == "" {
		return ReasonRangeRequired
	}

	requested, err := ParseRangeHeader(rangeHeader)
	if err != nil {
		return ReasonRangeUnparseable
	}

	if len(requested) != len(signed) {
		return ReasonRangeMismatch
	}
	for i, r := range requested {
		if r != signed[i] {
			return ReasonRangeMismatch
		}
	}

	return ""
}
