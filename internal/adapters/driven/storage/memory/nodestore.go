// Package memory provides in-memory implementations of driven ports.
// Nothing survives a restart; used for one-shot syncs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
)

// Ensure NodeStore implements the interface.
var _ driven.NodeStore = (*NodeStore)(nil)

// NodeStore is an in-memory implementation of driven.NodeStore.
type NodeStore struct {
	mu       sync.RWMutex
	typeName func(typeTag string) string
	declared map[string]bool
	nodes    map[string]map[string]domain.Node // type name -> id -> node
	index    map[string]string                 // id -> type name
}

// NewNodeStore creates a new in-memory node store. typeName maps a document
// type tag to its collection name. When declaredTypes is non-empty only
// those type tags get a collection.
func NewNodeStore(typeName func(typeTag string) string, declaredTypes []string) *NodeStore {
	declared := make(map[string]bool, len(declaredTypes))
	for _, t := range declaredTypes {
		declared[t] = true
	}
	return &NodeStore{
		typeName: typeName,
		declared: declared,
		nodes:    make(map[string]map[string]domain.Node),
		index:    make(map[string]string),
	}
}

// GetNodeByID returns the node with the given logical id in any collection.
func (s *NodeStore) GetNodeByID(_ context.Context, id string) (*domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	typeName, ok := s.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	node := s.nodes[typeName][id]
	return &node, nil
}

// CollectionForType returns the collection for a document type tag.
func (s *NodeStore) CollectionForType(_ context.Context, typeTag string) (driven.Collection, error) {
	if typeTag == "" {
		return nil, fmt.Errorf("%w: empty type", domain.ErrUnsupportedType)
	}
	if len(s.declared) > 0 && !s.declared[typeTag] {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, typeTag)
	}
	return &collection{store: s, typeName: s.typeName(typeTag)}, nil
}

// Collection returns the collection named typeName.
func (s *NodeStore) Collection(_ context.Context, typeName string) (driven.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.nodes[typeName]) == 0 {
		return nil, domain.ErrNotFound
	}
	return &collection{store: s, typeName: typeName}, nil
}

// TypeNames lists the collections that currently hold nodes.
func (s *NodeStore) TypeNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.nodes))
	for name, nodes := range s.nodes {
		if len(nodes) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Len returns the total number of nodes.
func (s *NodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// Close is a no-op for the in-memory store.
func (s *NodeStore) Close() error {
	return nil
}

// put stores node in typeName, moving it out of any other collection.
// Caller must hold the write lock.
func (s *NodeStore) put(typeName string, node domain.Node) {
	if prev, ok := s.index[node.ID]; ok && prev != typeName {
		delete(s.nodes[prev], node.ID)
	}
	if s.nodes[typeName] == nil {
		s.nodes[typeName] = make(map[string]domain.Node)
	}
	node.TypeName = typeName
	s.nodes[typeName][node.ID] = node
	s.index[node.ID] = typeName
}

// collection is a view of one type inside a NodeStore.
type collection struct {
	store    *NodeStore
	typeName string
}

var _ driven.Collection = (*collection)(nil)

func (c *collection) TypeName() string {
	return c.typeName
}

func (c *collection) GetNodeByID(_ context.Context, id string) (*domain.Node, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	node, ok := c.store.nodes[c.typeName][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &node, nil
}

func (c *collection) AddNode(_ context.Context, node domain.Node) error {
	if node.ID == "" {
		return fmt.Errorf("%w: node id is empty", domain.ErrInvalidInput)
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if _, exists := c.store.nodes[c.typeName][node.ID]; exists {
		return fmt.Errorf("%w: node %s already exists in %s", domain.ErrInvalidInput, node.ID, c.typeName)
	}
	c.store.put(c.typeName, node)
	return nil
}

func (c *collection) UpdateNode(_ context.Context, node domain.Node) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if _, exists := c.store.nodes[c.typeName][node.ID]; !exists {
		return domain.ErrNotFound
	}
	c.store.put(c.typeName, node)
	return nil
}

func (c *collection) RemoveNode(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if _, exists := c.store.nodes[c.typeName][id]; !exists {
		return nil
	}
	delete(c.store.nodes[c.typeName], id)
	delete(c.store.index, id)
	return nil
}

func (c *collection) Nodes(_ context.Context) ([]domain.Node, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	nodes := make([]domain.Node, 0, len(c.store.nodes[c.typeName]))
	for id := range c.store.nodes[c.typeName] {
		nodes = append(nodes, c.store.nodes[c.typeName][id])
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}
