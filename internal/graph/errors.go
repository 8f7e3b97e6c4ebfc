package graph

import "errors"

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrNodeExists   = errors.New("node already exists")
	ErrEdgeNotFound = errors.New("edge not found")
	ErrSealed       = errors.New("graph is sealed")
	ErrNotSealed    = errors.New("graph is not sealed")
)
