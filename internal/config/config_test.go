package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() *Params {
	p := Default()
	p.MaxYears = 4
	p.SimTag = 99
	return p
}

func TestDefault_MandatoryUnset(t *testing.T) {
	p := Default()
	assert.Equal(t, Unset, p.MaxYears)
	assert.Equal(t, int64(Unset), p.SimTag)
	assert.Equal(t, 4000, p.InitNumPeople)
	assert.Equal(t, 5.0, p.Weights.Race)
	assert.Equal(t, 0.0, p.Weights.Gender)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr error
	}{
		{"valid", func(p *Params) {}, nil},
		{"missing max years", func(p *Params) { p.MaxYears = Unset }, ErrMissingParam},
		{"missing simtag", func(p *Params) { p.SimTag = Unset }, ErrMissingParam},
		{"zero years", func(p *Params) { p.MaxYears = 0 }, ErrInvalidParam},
		{"negative people", func(p *Params) { p.InitNumPeople = -3 }, ErrInvalidParam},
		{"group bounds", func(p *Params) { p.GroupMinSize = 8; p.GroupMaxSize = 2 }, ErrInvalidParam},
		{"prob white", func(p *Params) { p.ProbabilityWhite = 1.5 }, ErrInvalidParam},
		{"negative weight", func(p *Params) { p.Weights.Dependent = -1 }, ErrInvalidParam},
		{"required friends", func(p *Params) { p.RequiredNumFriends = 0 }, ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	yml := "max_years: 3\nsimtag: 12\nweights:\n  race: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, p.MaxYears)
	assert.Equal(t, int64(12), p.SimTag)
	assert.Equal(t, 2.0, p.Weights.Race)
	assert.Equal(t, 2.5, p.Weights.Dependent, "unspecified keys keep defaults")
	assert.NoError(t, p.Validate())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	p := validParams()
	p.Seed = 1234
	path := filepath.Join(t.TempDir(), "out", p.ParamsFileName())
	require.NoError(t, p.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, "sim_params99.yaml", filepath.Base(path))
}
