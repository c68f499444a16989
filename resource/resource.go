package resource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// An Address uniquely identifies a declared resource instance.
//
// Counted resources expand to one address per ordinal. The address of a
// resource without count has a negative index and renders without brackets.
type Address struct {
	Type  string // Resource type, such as aws_vpc.
	Name  string // Name used in resource config.
	Index int    // Ordinal for counted resources. -1 when count is not set.
}

func (a Address) String() string {
	if a.Index < 0 {
		return a.Type + "." + a.Name
	}
	return fmt.Sprintf("%s.%s[%d]", a.Type, a.Name, a.Index)
}

// ParseAddress parses the string form of an address, as returned by
// Address.String().
func ParseAddress(s string) (Address, error) {
	addr := Address{Index: -1}
	if i := strings.IndexByte(s, '['); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return Address{}, errors.Errorf("invalid address %q", s)
		}
		n, err := strconv.Atoi(s[i+1 : len(s)-1])
		if err != nil || n < 0 {
			return Address{}, errors.Errorf("invalid index in address %q", s)
		}
		addr.Index = n
		s = s[:i]
	}
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return Address{}, errors.Errorf("invalid address %q", s)
	}
	addr.Type = s[:dot]
	addr.Name = s[dot+1:]
	return addr, nil
}
