package main

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dashboard-grid/components/grid"
)

type rolesCmd struct {
	File string `type:"path" help:"Role matrix YAML file (defaults to the built-in matrix)."`

	Out io.Writer `kong:"-"`
}

// Run prints the matrix in the same YAML shape LoadRoleMatrixFile reads.
func (cmd *rolesCmd) Run(_ context.Context) error {
	matrix, err := loadMatrix(cmd.File)
	if err != nil {
		return err
	}
	doc := struct {
		Permissions map[string][]string `yaml:"permissions"`
	}{Permissions: map[string][]string{}}
	for _, capability := range grid.Capabilities() {
		roles := matrix.Roles(capability)
		names := make([]string, 0, len(roles))
		for _, role := range roles {
			names = append(names, string(role))
		}
		doc.Permissions[capability.String()] = names
	}
	enc := yaml.NewEncoder(output(cmd.Out))
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("gridctl: encode matrix: %w", err)
	}
	return enc.Close()
}

type checkCmd struct {
	Role       string `arg:"" help:"Session role (admin, editor, viewer)."`
	Capability string `arg:"" help:"Capability name (save_layout, add_panel, ...)."`
	File       string `type:"path" help:"Role matrix YAML file."`
	User       string `help:"Current user email."`
	Creator    string `help:"Dashboard creator email."`

	Out io.Writer `kong:"-"`
}

// Run prints "allowed" or "denied" for the effective role.
func (cmd *checkCmd) Run(_ context.Context) error {
	role, err := grid.ParseRole(cmd.Role)
	if err != nil {
		return err
	}
	capability, err := grid.ParseCapability(cmd.Capability)
	if err != nil {
		return err
	}
	matrix, err := loadMatrix(cmd.File)
	if err != nil {
		return err
	}
	in := grid.PermissionInput{UserEmail: cmd.User, CreatorEmail: cmd.Creator, SessionRole: role}
	verdict := "denied"
	if grid.NewGate(matrix).Can(in, capability) {
		verdict = "allowed"
	}
	_, err = fmt.Fprintf(output(cmd.Out), "%s %s: %s\n", grid.EffectiveRole(in), capability, verdict)
	return err
}
