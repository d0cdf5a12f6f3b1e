package grid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"
)

// Capability is a permission-checked action on a dashboard.
type Capability int

const (
	CapSaveLayout Capability = iota + 1
	CapAddPanel
	CapEditLockedDashboard
	CapAddPanelLockedDashboard
)

var capabilityNames = map[Capability]string{
	CapSaveLayout:              "save_layout",
	CapAddPanel:                "add_panel",
	CapEditLockedDashboard:     "edit_locked_dashboard",
	CapAddPanelLockedDashboard: "add_panel_locked_dashboard",
}

// String returns the snake_case capability name.
func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// ParseCapability accepts snake, kebab or camel case names
// ("save_layout", "save-layout", "SaveLayout").
func ParseCapability(name string) (Capability, error) {
	key := strcase.ToSnake(strings.TrimSpace(name))
	for capability, candidate := range capabilityNames {
		if candidate == key {
			return capability, nil
		}
	}
	return 0, fmt.Errorf("grid: unknown capability %q", name)
}

// Capabilities lists every known capability in declaration order.
func Capabilities() []Capability {
	return []Capability{CapSaveLayout, CapAddPanel, CapEditLockedDashboard, CapAddPanelLockedDashboard}
}

// Role is a user role as reported by the session.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
	// RoleAuthor is assigned to the creator of the dashboard being viewed.
	RoleAuthor Role = "AUTHOR"
)

// ParseRole normalizes a role name ("admin", "Admin" -> ADMIN).
func ParseRole(name string) (Role, error) {
	role := Role(strings.ToUpper(strcase.ToSnake(strings.TrimSpace(name))))
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer, RoleAuthor:
		return role, nil
	}
	return "", fmt.Errorf("grid: unknown role %q", name)
}

// PermissionResolver answers capability checks for a role. The result is
// aligned positionally with caps.
type PermissionResolver interface {
	Resolve(caps []Capability, role Role) []bool
}

// PermissionResolverFunc adapts a function to PermissionResolver.
type PermissionResolverFunc func(caps []Capability, role Role) []bool

// Resolve implements PermissionResolver.
func (f PermissionResolverFunc) Resolve(caps []Capability, role Role) []bool {
	return f(caps, role)
}

// RoleMatrix maps each capability to the roles allowed to exercise it.
type RoleMatrix struct {
	mu      sync.RWMutex
	allowed map[Capability]map[Role]struct{}
}

// DefaultRoleMatrix returns the stock permission table.
func DefaultRoleMatrix() *RoleMatrix {
	m := NewRoleMatrix()
	m.Allow(CapSaveLayout, RoleAdmin, RoleEditor, RoleAuthor)
	m.Allow(CapAddPanel, RoleAdmin, RoleEditor, RoleAuthor)
	m.Allow(CapEditLockedDashboard, RoleAdmin, RoleAuthor)
	m.Allow(CapAddPanelLockedDashboard, RoleAdmin, RoleAuthor)
	return m
}

// NewRoleMatrix builds an empty matrix that denies everything.
func NewRoleMatrix() *RoleMatrix {
	return &RoleMatrix{allowed: map[Capability]map[Role]struct{}{}}
}

// Allow grants capability to roles.
func (m *RoleMatrix) Allow(capability Capability, roles ...Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.allowed[capability]
	if !ok {
		set = map[Role]struct{}{}
		m.allowed[capability] = set
	}
	for _, role := range roles {
		set[role] = struct{}{}
	}
}

// Allowed reports whether role holds capability.
func (m *RoleMatrix) Allowed(capability Capability, role Role) bool {
	if m == nil || role == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.allowed[capability][role]
	return ok
}

// Resolve implements PermissionResolver.
func (m *RoleMatrix) Resolve(caps []Capability, role Role) []bool {
	out := make([]bool, len(caps))
	for i, capability := range caps {
		out[i] = m.Allowed(capability, role)
	}
	return out
}

// Roles returns the roles granted capability.
func (m *RoleMatrix) Roles(capability Capability) []Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var roles []Role
	for _, role := range []Role{RoleAdmin, RoleEditor, RoleViewer, RoleAuthor} {
		if _, ok := m.allowed[capability][role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// roleMatrixDocument is the YAML form:
//
//	permissions:
//	  save_layout: [ADMIN, EDITOR, AUTHOR]
type roleMatrixDocument struct {
	Permissions map[string][]string `yaml:"permissions"`
}

// ReadRoleMatrix decodes a YAML permission table.
func ReadRoleMatrix(r io.Reader) (*RoleMatrix, error) {
	var doc roleMatrixDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("grid: decode role matrix: %w", err)
	}
	m := NewRoleMatrix()
	for name, roleNames := range doc.Permissions {
		capability, err := ParseCapability(name)
		if err != nil {
			return nil, err
		}
		roles := make([]Role, 0, len(roleNames))
		for _, roleName := range roleNames {
			role, err := ParseRole(roleName)
			if err != nil {
				return nil, fmt.Errorf("grid: capability %s: %w", capability, err)
			}
			roles = append(roles, role)
		}
		m.Allow(capability, roles...)
	}
	return m, nil
}

// LoadRoleMatrixFile reads a YAML permission table from disk.
func LoadRoleMatrixFile(path string) (*RoleMatrix, error) {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("grid: open role matrix %s: %w", path, err)
	}
	defer file.Close()
	return ReadRoleMatrix(file)
}

// ErrPermissionDenied is returned when the effective role lacks a capability.
var ErrPermissionDenied = errors.New("grid: permission denied")

// PermissionInput carries what the gate needs to resolve edit permissions.
type PermissionInput struct {
	UserEmail    string
	CreatorEmail string
	SessionRole  Role
	Locked       bool
}

// Permissions are the resolved edit capabilities for the current viewer.
type Permissions struct {
	Role       Role
	SaveLayout bool
	AddPanel   bool
}

// Gate resolves layout edit permissions.
type Gate struct {
	resolver PermissionResolver
}

// NewGate wraps resolver. A nil resolver falls back to DefaultRoleMatrix.
func NewGate(resolver PermissionResolver) Gate {
	if resolver == nil {
		resolver = DefaultRoleMatrix()
	}
	return Gate{resolver: resolver}
}

// EffectiveRole returns RoleAuthor for the dashboard creator and the session
// role otherwise. An empty user email never matches.
func EffectiveRole(in PermissionInput) Role {
	if in.UserEmail != "" && in.UserEmail == in.CreatorEmail {
		return RoleAuthor
	}
	return in.SessionRole
}

// RequestedCapabilities returns the capability pair checked for the lock state.
// Index 0 gates saving the layout, index 1 gates adding/moving panels.
func RequestedCapabilities(locked bool) []Capability {
	if locked {
		return []Capability{CapEditLockedDashboard, CapAddPanelLockedDashboard}
	}
	return []Capability{CapSaveLayout, CapAddPanel}
}

// Resolve computes the permissions for in.
func (g Gate) Resolve(in PermissionInput) Permissions {
	resolver := g.resolver
	if resolver == nil {
		resolver = DefaultRoleMatrix()
	}
	role := EffectiveRole(in)
	result := resolver.Resolve(RequestedCapabilities(in.Locked), role)
	return Permissions{
		Role:       role,
		SaveLayout: boolAt(result, 0),
		AddPanel:   boolAt(result, 1),
	}
}

// Can reports whether the effective role for in holds capability.
func (g Gate) Can(in PermissionInput, capability Capability) bool {
	resolver := g.resolver
	if resolver == nil {
		resolver = DefaultRoleMatrix()
	}
	return boolAt(resolver.Resolve([]Capability{capability}, EffectiveRole(in)), 0)
}

func boolAt(values []bool, idx int) bool {
	if idx < len(values) {
		return values[idx]
	}
	return false
}
