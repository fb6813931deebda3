package locator

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/quorumkv/placement/ring"
	"github.com/quorumkv/placement/topology"
)

// Config is the construction-time surface of a strategy: the keyspace it
// serves, the user-supplied option strings, and the collaborators policies
// may consult.
type Config struct {
	Keyspace     string
	Options      map[string]string
	Topology     *topology.Topology
	LocalAddress string

	// Logger is optional; nil means no logging.
	Logger *zap.Logger
}

// PolicyFactory builds a placement policy from validated configuration.
type PolicyFactory func(Config) (Policy, error)

// Registry is an explicit table of known placement policies, keyed by
// strategy name. Build one at startup and pass it to NewStrategy; there is
// no ambient global registry.
type Registry struct {
	byName map[string]PolicyFactory
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]PolicyFactory)}
}

// Register adds a factory under the given strategy name, replacing any
// previous registration.
func (r *Registry) Register(name string, f PolicyFactory) {
	r.byName[name] = f
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with the built-in policies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SimpleStrategyName, NewSimpleStrategy)
	r.Register(NetworkTopologyStrategyName, NewNetworkTopologyStrategy)
	r.Register(LocalStrategyName, NewLocalStrategy)
	return r
}

// NewStrategy constructs a strategy for the named policy, validating the
// configured options. An unknown name or invalid option yields a
// ConfigurationError.
func NewStrategy(reg *Registry, name string, rng *ring.Ring, cfg Config) (*Strategy, error) {
	policy, err := newPolicy(reg, name, cfg)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{
		keyspace: cfg.Keyspace,
		policy:   policy,
		ring:     rng,
		topo:     cfg.Topology,
		logger:   logger,
	}, nil
}

// ValidateStrategy constructs and validates the named policy without keeping
// it, for checking user configuration up front.
func ValidateStrategy(reg *Registry, name string, cfg Config) error {
	_, err := newPolicy(reg, name, cfg)
	return err
}

func newPolicy(reg *Registry, name string, cfg Config) (Policy, error) {
	factory, ok := reg.byName[name]
	if !ok {
		return nil, configErrorf(cfg.Keyspace, name,
			"Unable to find replication strategy class %q for keyspace %s", name, cfg.Keyspace)
	}
	policy, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if err := validateRecognizedOptions(cfg, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

func validateRecognizedOptions(cfg Config, p Policy) error {
	recognized := p.RecognizedOptions()
	if recognized == nil {
		// the policy accepts arbitrary keys and has validated them itself
		return nil
	}
	allowed := make(map[string]struct{}, len(recognized))
	for _, key := range recognized {
		allowed[key] = struct{}{}
	}
	keys := make([]string, 0, len(cfg.Options))
	for key := range cfg.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, ok := allowed[key]; !ok {
			return configErrorf(cfg.Keyspace, p.Name(),
				"Unrecognized strategy option {%s} passed to %s for keyspace %s",
				key, p.Name(), cfg.Keyspace)
		}
	}
	return nil
}

// ValidateReplicationFactor checks that rf is a non-empty, all-digit,
// non-negative decimal integer string.
func ValidateReplicationFactor(rf string) error {
	_, err := parseReplicationFactor("", "", rf)
	return err
}

func parseReplicationFactor(keyspace, strategy, rf string) (int, error) {
	if rf == "" || !allDigits(rf) {
		return 0, configErrorf(keyspace, strategy,
			"Replication factor must be numeric and non-negative, found '%s'", rf)
	}
	n, err := strconv.Atoi(rf)
	if err != nil {
		return 0, configErrorf(keyspace, strategy,
			"Replication factor must be numeric; found %s", rf)
	}
	return n, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
