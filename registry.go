// Package s3artifacts registers gateway artifact savers and retrievers with the host that calls them
package s3artifacts

import (
	"fmt"
	"sort"

	"github.com/apim-extensions/s3artifacts/artifacts"
	"github.com/apim-extensions/s3artifacts/synclog"
)

// Registry associates savers and retrievers with their names. It is not safe for concurrent
// registration.
type Registry struct {
	savers     map[string]artifacts.Saver
	retrievers map[string]artifacts.Retriever
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		savers:     make(map[string]artifacts.Saver),
		retrievers: make(map[string]artifacts.Retriever),
	}
}

// RegisterSaver associates the saver with its name. If the name already has a saver
// associated with it, then this method will return an error.
func (r *Registry) RegisterSaver(saver artifacts.Saver) error {
	if _, ok := r.savers[saver.Name()]; ok {
		return fmt.Errorf("Saver %s is already registered", saver.Name())
	}

	synclog.Debugf("Registering saver %s", saver.Name())
	r.savers[saver.Name()] = saver
	return nil
}

// RegisterRetriever associates the retriever with its name. If the name already has a
// retriever associated with it, then this method will return an error.
func (r *Registry) RegisterRetriever(retriever artifacts.Retriever) error {
	if _, ok := r.retrievers[retriever.Name()]; ok {
		return fmt.Errorf("Retriever %s is already registered", retriever.Name())
	}

	synclog.Debugf("Registering retriever %s", retriever.Name())
	r.retrievers[retriever.Name()] = retriever
	return nil
}

// Saver returns the saver registered under name, or nil if no such saver is registered
func (r *Registry) Saver(name string) artifacts.Saver {
	return r.savers[name]
}

// Retriever returns the retriever registered under name, or nil if no such retriever is registered
func (r *Registry) Retriever(name string) artifacts.Retriever {
	return r.retrievers[name]
}

// Names returns the sorted names of every registered saver followed by the sorted names of
// every registered retriever. A saver and a retriever may share a name.
func (r *Registry) Names() []string {
	return append(r.saverNames(), r.retrieverNames()...)
}

// Disconnect disconnects every saver and then every retriever, returning the first error
// encountered
func (r *Registry) Disconnect() error {
	var firstErr error
	record := func(kind, name string, err error) {
		if err == nil {
			return
		}
		synclog.Errorf("Error disconnecting %s %s: %+v", kind, name, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, name := range r.saverNames() {
		record("saver", name, r.savers[name].Disconnect())
	}
	for _, name := range r.retrieverNames() {
		record("retriever", name, r.retrievers[name].Disconnect())
	}
	return firstErr
}

func (r *Registry) saverNames() []string {
	names := make([]string, 0, len(r.savers))
	for name := range r.savers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) retrieverNames() []string {
	names := make([]string, 0, len(r.retrievers))
	for name := range r.retrievers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
