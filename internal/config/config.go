// Package config holds the run parameters for a campus simulation.
// Parameters come from built-in defaults, an optional YAML file, and finally
// command-line flags, and are immutable once the simulation starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Unset marks a mandatory integer parameter that has not been supplied.
const Unset = -1

var (
	// ErrMissingParam reports a mandatory parameter that was never set.
	ErrMissingParam = errors.New("missing mandatory parameter")
	// ErrInvalidParam reports a parameter with an out-of-range value.
	ErrInvalidParam = errors.New("invalid parameter")
)

// Params contains every tunable of a run.
type Params struct {
	// Run identity. MaxYears and SimTag are mandatory.
	MaxYears int   `yaml:"max_years"`
	SimTag   int64 `yaml:"simtag"`
	TrialNum int   `yaml:"trial_num"`
	Seed     int64 `yaml:"seed"`

	// Population and group sizes.
	InitNumPeople          int `yaml:"init_num_people"`
	InitNumGroups          int `yaml:"init_num_groups"`
	NumFreshmenPerYear     int `yaml:"num_freshmen_per_year"`
	NumNewGroupsPerYear    int `yaml:"num_new_groups_per_year"`
	GroupMinSize           int `yaml:"group_min_size"`
	GroupMaxSize           int `yaml:"group_max_size"`
	ConstantAttributePool  int `yaml:"constant_attribute_pool"`
	IndependentAttrPool    int `yaml:"independent_attribute_pool"`
	DependentAttributePool int `yaml:"dependent_attribute_pool"`

	// Demographics.
	ProbabilityWhite  float64 `yaml:"probability_white"`
	ProbabilityFemale float64 `yaml:"probability_female"`
	Extroversion      float64 `yaml:"extroversion"`

	// Similarity weights, in "equivalent attributes".
	Weights Weights `yaml:"weights"`

	// Friendship formation and maintenance.
	FriendshipCoefficient float64 `yaml:"friendship_coefficient"`
	FriendshipIntercept   float64 `yaml:"friendship_intercept"`
	NumToMeetGroup        int     `yaml:"num_to_meet_group"`
	NumToMeetPop          int     `yaml:"num_to_meet_pop"`
	DecayThreshold        int     `yaml:"decay_threshold"`
	DriftLikelihood       float64 `yaml:"drift_likelihood"`
	ForcedOppositeRace    int     `yaml:"initial_num_forced_opposite_race_friends"`

	// Attrition.
	DropoutRate        float64 `yaml:"dropout_rate"`
	DropoutIntercept   float64 `yaml:"dropout_intercept"`
	RequiredNumFriends float64 `yaml:"required_num_friends"`
	GroupDissolveProb  float64 `yaml:"group_dissolve_probability"`

	// Output.
	OutputDir string `yaml:"output_dir"`
	DBPath    string `yaml:"db_path,omitempty"`
	LogLevel  string `yaml:"log_level"`
}

// Weights are the relative importances of each attribute kind when computing
// perceived similarity.
type Weights struct {
	Constant    float64 `yaml:"constant"`
	Independent float64 `yaml:"independent"`
	Dependent   float64 `yaml:"dependent"`
	Race        float64 `yaml:"race"`
	Gender      float64 `yaml:"gender"`
}

// Default returns Params with the stock campus values. MaxYears and SimTag
// are left Unset and must be supplied by the caller.
func Default() *Params {
	return &Params{
		MaxYears: Unset,
		SimTag:   Unset,
		TrialNum: 1,
		Seed:     time.Now().UnixMilli(),

		InitNumPeople:          4000,
		InitNumGroups:          200,
		NumFreshmenPerYear:     1000,
		NumNewGroupsPerYear:    10,
		GroupMinSize:           3,
		GroupMaxSize:           10,
		ConstantAttributePool:  0,
		IndependentAttrPool:    20,
		DependentAttributePool: 20,

		ProbabilityWhite:  0.8,
		ProbabilityFemale: 1,
		Extroversion:      0.5,

		Weights: Weights{
			Constant:    1,
			Independent: 1.5,
			Dependent:   2.5,
			Race:        5,
			Gender:      0,
		},

		FriendshipCoefficient: 0.22,
		FriendshipIntercept:   0.05,
		NumToMeetGroup:        10,
		NumToMeetPop:          5,
		DecayThreshold:        2,
		DriftLikelihood:       0.1,
		ForcedOppositeRace:    0,

		DropoutRate:        0.01,
		DropoutIntercept:   0.05,
		RequiredNumFriends: 3,
		GroupDissolveProb:  0.25,

		OutputDir: ".",
		LogLevel:  "info",
	}
}

// Load reads a YAML file and overlays it on the defaults. Keys absent from
// the file keep their default values.
func Load(path string) (*Params, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return p, nil
}

// Save writes the resolved parameters as YAML so a run can be reproduced.
func (p *Params) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create params dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write params %s: %w", path, err)
	}
	return nil
}

// ParamsFileName returns the tag-annotated parameters file name for a run.
func (p *Params) ParamsFileName() string {
	return fmt.Sprintf("sim_params%d.yaml", p.SimTag)
}

// Validate checks the parameters. Mandatory values are reported before any
// range problems.
func (p *Params) Validate() error {
	if p.MaxYears == Unset {
		return fmt.Errorf("%w: max_years", ErrMissingParam)
	}
	if p.SimTag == Unset {
		return fmt.Errorf("%w: simtag", ErrMissingParam)
	}
	if p.MaxYears < 1 {
		return fmt.Errorf("%w: max_years must be at least 1, got %d", ErrInvalidParam, p.MaxYears)
	}

	counts := []struct {
		name string
		v    int
	}{
		{"init_num_people", p.InitNumPeople},
		{"init_num_groups", p.InitNumGroups},
		{"num_freshmen_per_year", p.NumFreshmenPerYear},
		{"num_new_groups_per_year", p.NumNewGroupsPerYear},
		{"group_min_size", p.GroupMinSize},
		{"group_max_size", p.GroupMaxSize},
		{"constant_attribute_pool", p.ConstantAttributePool},
		{"independent_attribute_pool", p.IndependentAttrPool},
		{"dependent_attribute_pool", p.DependentAttributePool},
		{"num_to_meet_group", p.NumToMeetGroup},
		{"num_to_meet_pop", p.NumToMeetPop},
		{"decay_threshold", p.DecayThreshold},
		{"initial_num_forced_opposite_race_friends", p.ForcedOppositeRace},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidParam, c.name, c.v)
		}
	}
	if p.GroupMinSize > p.GroupMaxSize {
		return fmt.Errorf("%w: group_min_size %d exceeds group_max_size %d",
			ErrInvalidParam, p.GroupMinSize, p.GroupMaxSize)
	}

	probs := []struct {
		name string
		v    float64
	}{
		{"probability_white", p.ProbabilityWhite},
		{"probability_female", p.ProbabilityFemale},
		{"extroversion", p.Extroversion},
		{"drift_likelihood", p.DriftLikelihood},
		{"group_dissolve_probability", p.GroupDissolveProb},
	}
	for _, pr := range probs {
		if pr.v < 0 || pr.v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrInvalidParam, pr.name, pr.v)
		}
	}

	w := p.Weights
	if w.Constant < 0 || w.Independent < 0 || w.Dependent < 0 || w.Race < 0 || w.Gender < 0 {
		return fmt.Errorf("%w: similarity weights must not be negative", ErrInvalidParam)
	}
	if p.RequiredNumFriends <= 0 {
		return fmt.Errorf("%w: required_num_friends must be positive", ErrInvalidParam)
	}
	return nil
}
