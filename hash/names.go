package hash

import (
	"sync"

	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// human readable names of nodes and vertices, used by tests and debug output
var (
	vertexNameDict = struct {
		sync.RWMutex
		m map[Vertex]string
	}{m: make(map[Vertex]string)}

	nodeNameDict = struct {
		sync.RWMutex
		m map[idx.ValidatorID]string
	}{m: make(map[idx.ValidatorID]string)}
)

// SetVertexName sets an optional human readable alias of vertex id.
func SetVertexName(id Vertex, name string) {
	vertexNameDict.Lock()
	vertexNameDict.m[id] = name
	vertexNameDict.Unlock()
}

// GetVertexName gets an optional human readable alias of vertex id.
func GetVertexName(id Vertex) string {
	vertexNameDict.RLock()
	defer vertexNameDict.RUnlock()
	return vertexNameDict.m[id]
}

// SetNodeName sets an optional human readable alias of validator.
func SetNodeName(id idx.ValidatorID, name string) {
	nodeNameDict.Lock()
	nodeNameDict.m[id] = name
	nodeNameDict.Unlock()
}

// GetNodeName gets an optional human readable alias of validator.
func GetNodeName(id idx.ValidatorID) string {
	nodeNameDict.RLock()
	defer nodeNameDict.RUnlock()
	return nodeNameDict.m[id]
}
