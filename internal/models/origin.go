// Package models defines the records exchanged between the legacy WordPress
// sources, the target blog store and the migration summary.
package models

import "fmt"

// Origin identifies which legacy upstream a record came from.
type Origin string

const (
	OriginCom Origin = "poesyliang.com"
	OriginNet Origin = "poesyliang.net"
)

// Origins lists both upstreams in aggregation order.
var Origins = []Origin{OriginCom, OriginNet}

// ParseOrigin validates a raw origin string.
func ParseOrigin(s string) (Origin, error) {
	switch Origin(s) {
	case OriginCom, OriginNet:
		return Origin(s), nil
	}
	return "", fmt.Errorf("unknown origin %q", s)
}

func (o Origin) String() string {
	return string(o)
}
