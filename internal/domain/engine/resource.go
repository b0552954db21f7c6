package engine

// ResourceTag names a machine-global resource a step mutates or consumes.
// Steps sharing a tag must never run concurrently: package databases and
// the login-shell registry are mutually exclusive system resources. The
// executor is sequential today, but it acquires per-tag locks so that
// branch-level parallelism can be added without touching step code.
type ResourceTag string

const (
	// ResourcePackageDB is the OS package manager database (apt/brew).
	ResourcePackageDB ResourceTag = "package-db"
	// ResourceShellDB is the system login-shell registry.
	ResourceShellDB ResourceTag = "shell-db"
	// ResourceGitNetwork covers git clone/fetch traffic.
	ResourceGitNetwork ResourceTag = "git-network"
	// ResourceHTTPNetwork covers release metadata and archive downloads.
	ResourceHTTPNetwork ResourceTag = "http-network"
	// ResourceFileEdit covers edits to user configuration files.
	ResourceFileEdit ResourceTag = "file-edit"
)

// Network reports whether the resource is network-bound. Network-bound
// actions get the executor's default timeout budget.
func (t ResourceTag) Network() bool {
	return t == ResourceGitNetwork || t == ResourceHTTPNetwork
}
