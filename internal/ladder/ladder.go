package ladder

import (
	"errors"
	"fmt"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

var (
	// ErrNoChangePossible means both axes are already at their bound in the
	// requested direction. Callers log and take no action; it is not a failure.
	ErrNoChangePossible = errors.New("no change possible in requested direction")

	ErrUnknownTier = errors.New("unknown size tier")
)

// Ladder encodes the two-axis step function over warehouse shapes. Moving up
// widens the cluster-count ceiling before stepping the node size; moving down
// is the mirror.
type Ladder struct {
	sizes   []string
	index   map[string]int
	floor   int
	ceiling int
}

type Config struct {
	Sizes   []string
	Floor   int
	Ceiling int
}

func New(cfg Config) (*Ladder, error) {
	if len(cfg.Sizes) == 0 {
		return nil, errors.New("ladder: size tier list must not be empty")
	}
	if cfg.Floor < 1 {
		return nil, errors.New("ladder: cluster-count floor must be at least 1")
	}
	if cfg.Ceiling < cfg.Floor {
		return nil, fmt.Errorf("ladder: cluster-count ceiling %d below floor %d", cfg.Ceiling, cfg.Floor)
	}

	index := make(map[string]int, len(cfg.Sizes))
	for i, size := range cfg.Sizes {
		if _, dup := index[size]; dup {
			return nil, fmt.Errorf("ladder: duplicate size tier %q", size)
		}
		index[size] = i
	}

	sizes := make([]string, len(cfg.Sizes))
	copy(sizes, cfg.Sizes)

	return &Ladder{
		sizes:   sizes,
		index:   index,
		floor:   cfg.Floor,
		ceiling: cfg.Ceiling,
	}, nil
}

func (l *Ladder) Floor() int   { return l.floor }
func (l *Ladder) Ceiling() int { return l.ceiling }

// SizeIndex returns the position of a tier name on the size axis.
func (l *Ladder) SizeIndex(size string) (int, error) {
	idx, ok := l.index[size]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, size)
	}
	return idx, nil
}

// AtFloor reports whether a shape is at the bottom of both axes.
func (l *Ladder) AtFloor(shape models.Shape) (bool, error) {
	idx, err := l.SizeIndex(shape.Size)
	if err != nil {
		return false, err
	}
	return shape.MaxClusters <= l.floor && idx == 0, nil
}

// AtCeiling reports whether a shape is at the top of both axes.
func (l *Ladder) AtCeiling(shape models.Shape) (bool, error) {
	idx, err := l.SizeIndex(shape.Size)
	if err != nil {
		return false, err
	}
	return shape.MaxClusters >= l.ceiling && idx == len(l.sizes)-1, nil
}

// Next computes the target shape one step away in the given direction.
// Cluster count moves first on both paths; size moves only once the count
// axis is exhausted.
func (l *Ladder) Next(shape models.Shape, dir models.Direction) (models.Shape, error) {
	idx, err := l.SizeIndex(shape.Size)
	if err != nil {
		return models.Shape{}, err
	}

	switch dir {
	case models.DirectionUp:
		if shape.MaxClusters < l.ceiling {
			return models.Shape{MaxClusters: shape.MaxClusters + 1, Size: shape.Size}, nil
		}
		if idx < len(l.sizes)-1 {
			return models.Shape{MaxClusters: shape.MaxClusters, Size: l.sizes[idx+1]}, nil
		}
		return models.Shape{}, ErrNoChangePossible

	case models.DirectionDown:
		if shape.MaxClusters > l.floor {
			return models.Shape{MaxClusters: shape.MaxClusters - 1, Size: shape.Size}, nil
		}
		if idx > 0 {
			return models.Shape{MaxClusters: shape.MaxClusters, Size: l.sizes[idx-1]}, nil
		}
		return models.Shape{}, ErrNoChangePossible

	default:
		return models.Shape{}, fmt.Errorf("ladder: unsupported direction %q", dir)
	}
}
