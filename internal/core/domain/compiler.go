// Package domain contains the core domain models for the kernel build pipeline.
package domain

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// MinCompilerVersion is the oldest compiler release the flag surface of this
// tool is known to work against.
var MinCompilerVersion = CompilerVersion{Major: 1, Minor: 12, Patch: 0}

// CompilerVersion is the parsed version of the located SPMD compiler.
type CompilerVersion struct {
	Major int
	Minor int
	Patch int
}

// ParseCompilerVersion extracts a version from the compiler's --version
// banner, e.g. "Intel(R) Implicit SPMD Program Compiler (ispc), 1.21.0".
// The first dotted numeric token found is taken as the version.
func ParseCompilerVersion(banner string) (CompilerVersion, error) {
	for _, field := range strings.FieldsFunc(banner, func(r rune) bool {
		return r == ' ' || r == ',' || r == '(' || r == ')' || r == '\n' || r == '\t'
	}) {
		v, ok := parseDotted(field)
		if ok {
			return v, nil
		}
	}
	return CompilerVersion{}, zerr.With(zerr.New("no version token in banner"), "banner", strings.TrimSpace(banner))
}

func parseDotted(s string) (CompilerVersion, bool) {
	// Accept "1.21.0" and "1.21"; release suffixes like "1.21.0dev" count too.
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return CompilerVersion{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return CompilerVersion{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return CompilerVersion{}, false
	}
	var patch int
	if len(parts) == 3 {
		digits := parts[2]
		for i, r := range digits {
			if r < '0' || r > '9' {
				digits = digits[:i]
				break
			}
		}
		patch, _ = strconv.Atoi(digits)
	}
	return CompilerVersion{Major: major, Minor: minor, Patch: patch}, true
}

// String renders the version as "major.minor.patch".
func (v CompilerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v is the same as or newer than other.
func (v CompilerVersion) AtLeast(other CompilerVersion) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch >= other.Patch
}

// CompilerHandle is the resolved external compiler: its absolute path, the
// version detected by the probe, and the capability set derived from it.
// It is created once per build and immutable afterwards.
type CompilerHandle struct {
	Path         string
	Version      CompilerVersion
	Capabilities CapabilitySet
}

// CapabilitySet describes what the located compiler can target.
type CapabilitySet struct {
	Variants   map[Arch][]ISAVariant
	Addressing []Addressing
}

// SupportsVariant reports whether the compiler can emit code for the given
// architecture/variant pair.
func (c CapabilitySet) SupportsVariant(arch Arch, v ISAVariant) bool {
	for _, have := range c.Variants[arch] {
		if have == v {
			return true
		}
	}
	return false
}

// SupportsAddressing reports whether the compiler accepts the given
// addressing width.
func (c CapabilitySet) SupportsAddressing(a Addressing) bool {
	for _, have := range c.Addressing {
		if have == a {
			return true
		}
	}
	return false
}
