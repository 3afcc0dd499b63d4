// resolution.go - "WIDTHxHEIGHT" and named resolution parsing.
package generator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidResolution is wrapped by every ParseResolution failure.
var ErrInvalidResolution = errors.New("invalid resolution")

// Resolutions maps aliases to [width, height].
var Resolutions = map[string][2]int{
	"hd":  {1280, 720},
	"fhd": {1920, 1080},
	"2k":  {2560, 1440},
	"4k":  {3840, 2160},
	"uhd": {3840, 2160},
}

var dimsPattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// ParseResolution accepts an alias (case-insensitive) or "WIDTHxHEIGHT".
func ParseResolution(s string) (width, height int, err error) {
	if dims, ok := Resolutions[strings.ToLower(s)]; ok {
		return dims[0], dims[1], nil
	}

	m := dimsPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q: use WxH (e.g. 1920x1080) or one of: %s",
			ErrInvalidResolution, s, strings.Join(AliasNames(), ", "))
	}

	width, werr := strconv.Atoi(m[1])
	height, herr := strconv.Atoi(m[2])
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q: width and height must be positive", ErrInvalidResolution, s)
	}
	return width, height, nil
}

// AliasNames lists the known aliases, sorted.
func AliasNames() []string {
	names := make([]string, 0, len(Resolutions))
	for name := range Resolutions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
