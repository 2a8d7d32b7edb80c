package ports

import "github.com/lanebuild/lane/internal/core/domain"

// TargetResolver maps the build target onto ordered compiler flag lists,
// one per requested ISA variant plus one dispatch set when more than one
// variant is requested. Combinations outside the handle's capability set
// fail with domain.ErrUnsupportedTargetConfiguration before anything runs.
type TargetResolver interface {
	Resolve(handle *domain.CompilerHandle, target domain.BuildTarget) ([]domain.FlagSet, error)
}
