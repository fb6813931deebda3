package topology

import "sort"

// Topology maps node addresses to their datacenter and rack. It is a pure
// lookup table: membership is registered up front and queried by the
// placement code, nothing here does I/O or mutates on its own.
type Topology struct {
	dcOf    map[string]string
	rackOf  map[string]string
	members map[string]map[string]struct{} // datacenter -> addresses
}

func New() *Topology {
	return &Topology{
		dcOf:    make(map[string]string),
		rackOf:  make(map[string]string),
		members: make(map[string]map[string]struct{}),
	}
}

// AddEndpoint registers addr as living in the given datacenter and rack.
// Re-registering an address moves it.
func (t *Topology) AddEndpoint(addr, datacenter, rack string) {
	if old, ok := t.dcOf[addr]; ok {
		delete(t.members[old], addr)
	}
	t.dcOf[addr] = datacenter
	t.rackOf[addr] = rack
	if t.members[datacenter] == nil {
		t.members[datacenter] = make(map[string]struct{})
	}
	t.members[datacenter][addr] = struct{}{}
}

// RemoveEndpoint drops addr from the topology.
func (t *Topology) RemoveEndpoint(addr string) {
	if dc, ok := t.dcOf[addr]; ok {
		delete(t.members[dc], addr)
	}
	delete(t.dcOf, addr)
	delete(t.rackOf, addr)
}

// DatacenterOf returns the datacenter addr belongs to.
func (t *Topology) DatacenterOf(addr string) (string, bool) {
	dc, ok := t.dcOf[addr]
	return dc, ok
}

// RackOf returns the rack addr belongs to.
func (t *Topology) RackOf(addr string) (string, bool) {
	rack, ok := t.rackOf[addr]
	return rack, ok
}

// Members returns a copy of the address set of a datacenter.
func (t *Topology) Members(datacenter string) map[string]struct{} {
	src := t.members[datacenter]
	out := make(map[string]struct{}, len(src))
	for addr := range src {
		out[addr] = struct{}{}
	}
	return out
}

// HasDatacenter reports whether any registered address lives in datacenter.
func (t *Topology) HasDatacenter(datacenter string) bool {
	return len(t.members[datacenter]) > 0
}

// Datacenters returns the known datacenter names, sorted.
func (t *Topology) Datacenters() []string {
	out := make([]string, 0, len(t.members))
	for dc, addrs := range t.members {
		if len(addrs) > 0 {
			out = append(out, dc)
		}
	}
	sort.Strings(out)
	return out
}
