package output

// JSON shapes emitted by the commands in --output json mode.

// DAGNode is one object in the dependency graph output.
type DAGNode struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

// DAGLevel groups objects that share a build level.
type DAGLevel struct {
	Level   int       `json:"level"`
	Objects []DAGNode `json:"objects"`
}

// DAGOutput is the full graph report.
type DAGOutput struct {
	Levels       []DAGLevel `json:"levels"`
	TotalObjects int        `json:"total_objects"`
	TotalEdges   int        `json:"total_edges"`
}

// ObjectDeps is one object's resolved dependency list.
type ObjectDeps struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	File         string   `json:"file,omitempty"`
	Dependencies []string `json:"dependencies"`
}

// DepsOutput is the full dependency report.
type DepsOutput struct {
	Objects []ObjectDeps `json:"objects"`
}

// DiagnosticInfo is one validation problem.
type DiagnosticInfo struct {
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// ValidateOutput is the validation report.
type ValidateOutput struct {
	Objects     int              `json:"objects"`
	Diagnostics []DiagnosticInfo `json:"diagnostics"`
	Valid       bool             `json:"valid"`
}

// BuildOutput is the build report.
type BuildOutput struct {
	Project  string `json:"project"`
	Package  string `json:"package"`
	Objects  int    `json:"objects"`
	UpToDate bool   `json:"up_to_date"`
}
