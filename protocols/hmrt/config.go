package hmrt

import (
	"fmt"
	"os"
	"reflect"

	"github.com/cronokirby/saferith"
	"github.com/go-playground/validator/v10"
	"github.com/taurusgroup/two-party-rsa/internal/params"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	"gopkg.in/yaml.v3"
)

// Config holds the public parameters both parties must agree on.
type Config struct {
	// CandidateBits is the size of the target RSA modulus. Each candidate N has at most CandidateBits/2+1 bits.
	CandidateBits int `yaml:"candidate_bits" validate:"required,gte=16"`
	// PaillierBits is the size of each party's local Paillier modulus.
	PaillierBits int `yaml:"paillier_bits" validate:"required,gte=256"`
	// GroupName selects the ElGamal group, see elgamal.GroupByName.
	GroupName string `yaml:"group"`
	// TrialDivisionBound is the exclusive upper bound on the trial divisors.
	TrialDivisionBound uint32 `yaml:"trial_division_bound" validate:"gte=4"`

	// Group overrides GroupName when set.
	Group *elgamal.Group `yaml:"-" validate:"-"`
}

// DefaultConfig returns the parameters used in production.
func DefaultConfig() *Config {
	return &Config{
		CandidateBits:      params.BitsCandidate,
		PaillierBits:       params.BitsPaillier,
		GroupName:          elgamal.NameFFDHE2048,
		TrialDivisionBound: params.TrialDivisionBound,
	}
}

// LoadConfigFile reads a yaml configuration.
// Fields missing from the file keep their default value.
func LoadConfigFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseConfig(content)
}

// ParseConfig decodes and validates a yaml configuration.
func ParseConfig(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the tags of the configuration, as well as the relations between its fields.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("yaml")
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.CandidateBits%2 != 0 {
		return wrap(ErrInvalidConfig, "candidate_bits must be even, got %d", c.CandidateBits)
	}
	if c.CandidateBits < params.MinBitsCandidate {
		return wrap(ErrInvalidConfig, "candidate_bits must be at least %d", params.MinBitsCandidate)
	}
	group, err := c.ElGamalGroup()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	// the modular reduction proof needs 2ᵇᵒᵘⁿᵈ⋅4 < q
	if need := c.BoundBits() + 3; group.Q().BitLen() <= need {
		return wrap(ErrInvalidConfig, "group %s is too small for %d-bit candidates", group, c.CandidateBits)
	}
	if c.BoundBits() <= 32 && uint64(c.TrialDivisionBound) > uint64(1)<<c.BoundBits() {
		return wrap(ErrInvalidConfig, "trial_division_bound %d exceeds the share bound", c.TrialDivisionBound)
	}
	return nil
}

// ElGamalGroup returns the group selected by the configuration.
func (c *Config) ElGamalGroup() (*elgamal.Group, error) {
	if c.Group != nil {
		return c.Group, nil
	}
	return elgamal.GroupByName(c.GroupName)
}

// ShareBits is the size of each party's candidate share, so that N = 4⋅(p₀+p₁)+3 has at most BoundBits+1 bits.
func (c *Config) ShareBits() int {
	return c.CandidateBits/2 - 2
}

// BoundBits is log₂ of the bound used by the range and reduction proofs.
//
// It is larger than ShareBits: the range proof admits some slack, and the reduction proof
// is given the scaled share 4⋅p + 3.
func (c *Config) BoundBits() int {
	return c.CandidateBits / 2
}

// Bound returns 2ᴮᵒᵘⁿᵈᴮⁱᵗˢ.
func (c *Config) Bound() *saferith.Nat {
	bits := c.BoundBits()
	return new(saferith.Nat).Lsh(new(saferith.Nat).SetUint64(1), uint(bits), bits+1)
}

// TrialDivisors returns the odd primes below TrialDivisionBound, in increasing order.
// 2 is never included, since every candidate is odd.
func (c *Config) TrialDivisors() []uint64 {
	primes := sample.Primes(c.TrialDivisionBound)
	divisors := make([]uint64, len(primes))
	for i, p := range primes {
		divisors[i] = uint64(p)
	}
	return divisors
}
