package domain_test

import (
	"testing"

	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestBlueprint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bp      *domain.Blueprint
		wantErr bool
	}{
		{
			name: "valid",
			bp:   &domain.Blueprint{InitState: "a", States: map[string][]domain.SetupFunc{"a": nil, "b": nil}},
		},
		{name: "nil", bp: nil, wantErr: true},
		{
			name:    "missing initial state",
			bp:      &domain.Blueprint{States: map[string][]domain.SetupFunc{"a": nil}},
			wantErr: true,
		},
		{
			name:    "undeclared initial state",
			bp:      &domain.Blueprint{InitState: "b", States: map[string][]domain.SetupFunc{"a": nil}},
			wantErr: true,
		},
		{
			name:    "reserved state name",
			bp:      &domain.Blueprint{InitState: "a", States: map[string][]domain.SetupFunc{"a": nil, domain.StateEnd: nil}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bp.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidBlueprint)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBlueprint_IsValidTarget(t *testing.T) {
	bp := &domain.Blueprint{InitState: "a", States: map[string][]domain.SetupFunc{"a": nil}}

	assert.True(t, bp.IsValidTarget("a"))
	assert.True(t, bp.IsValidTarget(domain.StateEnd))
	assert.False(t, bp.IsValidTarget("b"))
}
