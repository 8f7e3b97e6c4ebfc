package condition

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Group is a boolean tree over leaf conditions. Exactly one of All, Any, Not
// or Cond is set. Groups are serializable data so rule trees can be authored
// in content files and validated offline.
type Group struct {
	All  []*Group   `json:"all,omitempty" yaml:"all,omitempty"`
	Any  []*Group   `json:"any,omitempty" yaml:"any,omitempty"`
	Not  *Group     `json:"not,omitempty" yaml:"not,omitempty"`
	Cond *Condition `json:"cond,omitempty" yaml:"cond,omitempty"`
}

// Leaf wraps a single condition in a group.
func Leaf(c Condition) *Group {
	return &Group{Cond: &c}
}

// AllOf combines groups with AND.
func AllOf(groups ...*Group) *Group {
	return &Group{All: groups}
}

// AnyOf combines groups with OR.
func AnyOf(groups ...*Group) *Group {
	return &Group{Any: groups}
}

// Negate wraps a group with NOT.
func Negate(g *Group) *Group {
	return &Group{Not: g}
}

// Validate checks the tree shape and every leaf.
func (g *Group) Validate() error {
	el := errors.NewErrorList()

	set := 0
	if len(g.All) > 0 {
		set++
	}
	if len(g.Any) > 0 {
		set++
	}
	if g.Not != nil {
		set++
	}
	if g.Cond != nil {
		set++
	}
	if set != 1 {
		el.Add(fmt.Errorf("group must set exactly one of all, any, not, cond"))
	}

	for i, sub := range g.All {
		if err := sub.Validate(); err != nil {
			el.Add(fmt.Errorf("all[%d]: %w", i, err))
		}
	}
	for i, sub := range g.Any {
		if err := sub.Validate(); err != nil {
			el.Add(fmt.Errorf("any[%d]: %w", i, err))
		}
	}
	if g.Not != nil {
		if err := g.Not.Validate(); err != nil {
			el.Add(fmt.Errorf("not: %w", err))
		}
	}
	if g.Cond != nil {
		if err := g.Cond.Validate(); err != nil {
			el.Add(err)
		}
	}

	return el.Err()
}
