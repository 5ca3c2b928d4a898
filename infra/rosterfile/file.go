// Package rosterfile loads the day roster handed to the engine: staff,
// students, and any operator-seeded assignments, expressed with the codes
// schedulers actually write ("RBT", "2:1", "AM") rather than enum values.
package rosterfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk roster document.
type File struct {
	Date        string            `json:"date" yaml:"date"`
	Staff       []StaffEntry      `json:"staff" yaml:"staff"`
	Students    []StudentEntry    `json:"students" yaml:"students"`
	Assignments []AssignmentEntry `json:"assignments" yaml:"assignments"`
}

// StaffEntry describes one caregiver row.
type StaffEntry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
	// Programs lists the cohorts the staff member may serve. Empty means
	// both.
	Programs []string `json:"programs" yaml:"programs"`
	// Absent holds "AM", "PM" or "day".
	Absent []string `json:"absent" yaml:"absent"`
	// OutOfSession holds "AM" or "PM" windows blocked by meetings or
	// assessments.
	OutOfSession []string `json:"out_of_session" yaml:"out_of_session"`
	Inactive     bool     `json:"inactive" yaml:"inactive"`
}

// StudentEntry describes one client row.
type StudentEntry struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Program string `json:"program" yaml:"program"`
	// Ratio applies to both sessions unless overridden; empty means 1:1.
	Ratio      string   `json:"ratio" yaml:"ratio"`
	RatioAM    string   `json:"ratio_am" yaml:"ratio_am"`
	RatioPM    string   `json:"ratio_pm" yaml:"ratio_pm"`
	Team       []string `json:"team" yaml:"team"`
	PairedWith string   `json:"paired_with" yaml:"paired_with"`
	Absent     []string `json:"absent" yaml:"absent"`
	Inactive   bool     `json:"inactive" yaml:"inactive"`
}

// AssignmentEntry seeds the schedule before the engine runs, typically a
// manual placement the scheduler wants preserved.
type AssignmentEntry struct {
	StaffID   string `json:"staff_id" yaml:"staff_id"`
	StudentID string `json:"student_id" yaml:"student_id"`
	Session   string `json:"session" yaml:"session"`
	// Program defaults to the student's program when empty.
	Program string `json:"program" yaml:"program"`
	Locked  bool   `json:"locked" yaml:"locked"`
}

// Load reads a roster File from a JSON or YAML file.
func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var f File
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	case ".json":
		err = json.Unmarshal(b, &f)
	default:
		return File{}, fmt.Errorf("unsupported roster format: %s", ext)
	}
	return f, err
}

// Decode reads from r to decode a roster File.
func Decode(r io.Reader, format string) (File, error) {
	var f File
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&f); err != nil {
			return f, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&f); err != nil {
			return f, err
		}
	default:
		return f, fmt.Errorf("unsupported format: %s", format)
	}
	return f, nil
}
