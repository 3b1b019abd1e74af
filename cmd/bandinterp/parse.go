package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// parseTriple parses "x,y,z" into three floats.
func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		v, err := cast.ToFloat64E(strings.TrimSpace(p))
		if err != nil {
			return out, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseDims parses "n1,n2,n3" into mesh sizes that are powers of two.
func parseDims(s string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("want n1,n2,n3, got %q", s)
	}
	for i, p := range parts {
		n, err := cast.ToIntE(strings.TrimSpace(p))
		if err != nil || n <= 0 || n&(n-1) != 0 {
			return out, fmt.Errorf("mesh size %d of %q must be a power of two", i, s)
		}
		out[i] = n
	}
	return out, nil
}

// parsePath parses "k1;k2;..." into at least two vertices.
func parsePath(s string) ([][3]float64, error) {
	var out [][3]float64
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := parseTriple(part)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("path needs at least two k-points: %q", s)
	}
	return out, nil
}
