package param

import (
	"fmt"
	"math/bits"
	"strings"
)

// Flag is a bit-set of behavioral tags attached to an attribute.
type Flag uint32

const (
	FlagNodeOwn Flag = 1 << iota
	FlagServerOwn
	FlagClientOwn
	FlagExcludeFromClient
	FlagClientUnknown
	FlagClientPrivileged
	FlagPersistent
	FlagPerInstanceSetting
	FlagDupeSetOk
	FlagDeprecated
	FlagMetric
	FlagEquipSlot
	FlagUts
	FlagContentJSON
)

var flagNames = []string{
	"nodeOwn",
	"serverOwn",
	"clientOwn",
	"excludeFromClient",
	"clientUnknown",
	"clientPrivileged",
	"persistent",
	"perInstanceSetting",
	"dupeSetOk",
	"deprecated",
	"metric",
	"equipSlot",
	"uts",
	"contentJSON",
}

var flagByKeyword = func() map[string]Flag {
	m := make(map[string]Flag, len(flagNames))
	for i, n := range flagNames {
		m[strings.ToLower(n)] = 1 << i
	}
	return m
}()

// ParseFlag maps a single schema flag keyword to its bit.
func ParseFlag(keyword string) (Flag, error) {
	if f, ok := flagByKeyword[strings.ToLower(strings.TrimSpace(keyword))]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown param flag %q", keyword)
}

// ParseFlags parses a list of keywords into a combined set.
func ParseFlags(keywords []string) (Flag, error) {
	var out Flag
	for _, k := range keywords {
		f, err := ParseFlag(k)
		if err != nil {
			return 0, err
		}
		out |= f
	}
	return out, nil
}

func (f Flag) Has(other Flag) bool { return f&other == other }

// ClientVisible reports whether an attribute with these flags is sent to clients.
func (f Flag) ClientVisible() bool {
	return f&(FlagExcludeFromClient|FlagClientUnknown) == 0
}

// Names returns the keywords of all set bits in bit order.
func (f Flag) Names() []string {
	out := make([]string, 0, bits.OnesCount32(uint32(f)))
	for i, n := range flagNames {
		if f&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	return out
}

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}
