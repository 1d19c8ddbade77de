package aspects

import "github.com/aretw0/tinyfsm/pkg/domain"

// Spawner creates and deletes machines; *manager.Manager satisfies it.
type Spawner interface {
	CreateMachine(bp *domain.Blueprint) (int, error)
	DeleteMachine(id int) error
}

// Nested runs a child machine for as long as the state is active. The child
// blueprint is built from the parent's view so the child can drive its parent.
// If the child cannot be created the parent moves to fallback instead.
func Nested(s Spawner, child func(parent domain.SetupView) *domain.Blueprint, fallback string) domain.SetupFunc {
	return func(parent domain.SetupView) domain.CleanupFunc {
		id, err := s.CreateMachine(child(parent))
		if err != nil {
			_ = parent.RequestTransition(fallback)
			return nil
		}
		return func(domain.CleanupView) { _ = s.DeleteMachine(id) }
	}
}
