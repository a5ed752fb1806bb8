// Package store persists plans and extensions as JSON records under a
// .planforge workspace directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/planforge/planforge/internal/types"
)

const WorkspaceDir = ".planforge"

var ErrNoWorkspace = errors.New("no planforge workspace found (run 'planforge init' first)")
var ErrWorkspaceExists = errors.New("planforge workspace already exists (use --force to overwrite)")

// Find walks up from cwd looking for a .planforge/ directory
func Find() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, WorkspaceDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoWorkspace
		}
		dir = parent
	}
}

// Path returns the .planforge directory path for a workspace
func Path(workspaceDir string) string {
	return filepath.Join(workspaceDir, WorkspaceDir)
}

// ConfigPath returns the config.yaml path
func ConfigPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, WorkspaceDir, "config.yaml")
}

// AuditPath returns the audit trail path
func AuditPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, WorkspaceDir, "audit.jsonl")
}

// Init creates the workspace skeleton. An existing workspace is an
// error unless force is set.
func Init(workspaceDir string, force bool) error {
	root := Path(workspaceDir)
	if _, err := os.Stat(root); err == nil && !force {
		return ErrWorkspaceExists
	}
	for _, sub := range []string{"plans", "extensions"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			return fmt.Errorf("init workspace: %w", err)
		}
	}
	return nil
}

// Store reads and writes plan and extension records for one workspace
type Store struct {
	root string
}

// Open returns a store rooted at the given workspace directory
func Open(workspaceDir string) *Store {
	return &Store{root: Path(workspaceDir)}
}

func (s *Store) planPath(id string) string {
	return filepath.Join(s.root, "plans", id+".json")
}

func (s *Store) extensionPath(id string) string {
	return filepath.Join(s.root, "extensions", id+".json")
}

// SavePlan writes the plan record, replacing any previous version
func (s *Store) SavePlan(plan *types.TaskPlan) error {
	if plan.ID == "" {
		return fmt.Errorf("save plan: missing id")
	}
	return writeJSON(s.planPath(plan.ID), plan)
}

// LoadPlan reads one plan record by id
func (s *Store) LoadPlan(id string) (*types.TaskPlan, error) {
	var plan types.TaskPlan
	if err := readJSON(s.planPath(id), &plan); err != nil {
		return nil, fmt.Errorf("load plan %s: %w", id, err)
	}
	return &plan, nil
}

// ListPlans returns every stored plan, newest first
func (s *Store) ListPlans() ([]*types.TaskPlan, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "plans"))
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	var plans []*types.TaskPlan
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		var plan types.TaskPlan
		if err := readJSON(filepath.Join(s.root, "plans", entry.Name()), &plan); err != nil {
			return nil, fmt.Errorf("list plans: %s: %w", entry.Name(), err)
		}
		plans = append(plans, &plan)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// SaveExtension writes the extension record, replacing any previous version
func (s *Store) SaveExtension(ext *types.Extension) error {
	if ext.ID == "" {
		return fmt.Errorf("save extension: missing id")
	}
	return writeJSON(s.extensionPath(ext.ID), ext)
}

// LoadExtension reads one extension record by id
func (s *Store) LoadExtension(id string) (*types.Extension, error) {
	var ext types.Extension
	if err := readJSON(s.extensionPath(id), &ext); err != nil {
		return nil, fmt.Errorf("load extension %s: %w", id, err)
	}
	return &ext, nil
}

// ListExtensions returns the stored extensions for a target plan,
// newest first. An empty target id lists all of them.
func (s *Store) ListExtensions(targetPlanID string) ([]*types.Extension, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "extensions"))
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}

	var exts []*types.Extension
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		var ext types.Extension
		if err := readJSON(filepath.Join(s.root, "extensions", entry.Name()), &ext); err != nil {
			return nil, fmt.Errorf("list extensions: %s: %w", entry.Name(), err)
		}
		if targetPlanID != "" && ext.TargetPlanID != targetPlanID {
			continue
		}
		exts = append(exts, &ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		return exts[i].CreatedAt.After(exts[j].CreatedAt)
	})
	return exts, nil
}

// writeJSON marshals v and writes it atomically: a temp file in the
// same directory, then rename. Readers never observe a partial record.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
