package correlate

import (
	"sort"

	"socforge/core"
)

// mergeIOCSummary unions an alert's indicators into the incident summary.
// Sets are kept sorted and deduplicated so identical incident states
// serialize identically.
func mergeIOCSummary(summary *core.IOCSummary, ind core.IOCIndicators) {
	ips := append(append([]string{}, ind.SourceIPs...), ind.DestIPs...)
	summary.IPAddresses = unionStrings(summary.IPAddresses, ips)
	summary.Hostnames = unionStrings(summary.Hostnames, ind.Hostnames)
	summary.Processes = unionStrings(summary.Processes, ind.Processes)
	summary.Ports = unionInts(summary.Ports, ind.DestPorts)
}

func unionInts(existing, add []int) []int {
	if len(add) == 0 {
		return existing
	}
	set := make(map[int]struct{}, len(existing)+len(add))
	for _, n := range existing {
		set[n] = struct{}{}
	}
	for _, n := range add {
		if n != 0 {
			set[n] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
