package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/quorumkv/placement/locator"
	"github.com/quorumkv/placement/ring"
	"github.com/quorumkv/placement/token"
	"github.com/quorumkv/placement/topology"
)

// layout is the TOML description of a cluster snapshot: node placement,
// token assignments, in-flight replacements, and one keyspace's strategy.
type layout struct {
	LocalAddress string              `toml:"local_address"`
	Nodes        []nodeConfig        `toml:"nodes"`
	Keyspace     keyspaceConfig      `toml:"keyspace"`
	Replacements []replacementConfig `toml:"replacements"`
}

type nodeConfig struct {
	Address    string  `toml:"address"`
	Datacenter string  `toml:"datacenter"`
	Rack       string  `toml:"rack"`
	Tokens     []int64 `toml:"tokens"`
}

type keyspaceConfig struct {
	Name     string            `toml:"name"`
	Strategy string            `toml:"strategy"`
	Options  map[string]string `toml:"options"`
}

type replacementConfig struct {
	Existing    string `toml:"existing"`
	Replacement string `toml:"replacement"`
}

func loadLayout(path string) (*layout, error) {
	var l layout
	if _, err := toml.DecodeFile(path, &l); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", path, err)
	}
	if len(l.Nodes) == 0 {
		return nil, errors.New("layout has no nodes")
	}
	if l.Keyspace.Name == "" || l.Keyspace.Strategy == "" {
		return nil, errors.New("layout needs a keyspace name and strategy")
	}
	return &l, nil
}

// build turns the layout into a live ring, topology, and strategy.
func (l *layout) build(logger *zap.Logger) (*ring.Ring, *topology.Topology, *locator.Strategy, error) {
	rng := ring.New()
	topo := topology.New()
	for _, n := range l.Nodes {
		topo.AddEndpoint(n.Address, n.Datacenter, n.Rack)
		toks := make([]token.Token, len(n.Tokens))
		for i, v := range n.Tokens {
			toks[i] = token.Token(v)
		}
		rng.UpdateNormalTokens(toks, n.Address)
	}
	for _, rep := range l.Replacements {
		rng.AddReplacingEndpoint(rep.Existing, rep.Replacement)
	}

	s, err := locator.NewStrategy(locator.DefaultRegistry(), l.Keyspace.Strategy, rng, locator.Config{
		Keyspace:     l.Keyspace.Name,
		Options:      l.Keyspace.Options,
		Topology:     topo,
		LocalAddress: l.LocalAddress,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return rng, topo, s, nil
}
