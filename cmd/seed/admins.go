package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Fraol-12/WhisperBox/internal/model"
)

// seedAdmin is one entry of an admins file.
type seedAdmin struct {
	Name       string `yaml:"name"`
	Department string `yaml:"department"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
}

type seedFile struct {
	Admins []seedAdmin `yaml:"admins"`
}

// defaultPassword is what every built-in admin starts with. Change it
// after first login.
const defaultPassword = "admin123"

// defaultAdmins is one admin per department.
var defaultAdmins = []seedAdmin{
	{Name: "Café Admin", Department: "Café", Email: "cafe@university.edu", Password: defaultPassword},
	{Name: "IT Admin", Department: "IT", Email: "it@university.edu", Password: defaultPassword},
	{Name: "Library Admin", Department: "Library", Email: "library@university.edu", Password: defaultPassword},
	{Name: "Dorm Admin", Department: "Dorm", Email: "dorm@university.edu", Password: defaultPassword},
	{Name: "Registrar Admin", Department: "Registrar", Email: "registrar@university.edu", Password: defaultPassword},
}

func loadSeedFile(path string) ([]seedAdmin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Admins) == 0 {
		return nil, fmt.Errorf("%s: no admins listed", path)
	}
	return f.Admins, nil
}

// toAdmins checks every entry and resolves departments and emails to their
// stored form. All problems are reported together.
func toAdmins(entries []seedAdmin) ([]model.Admin, error) {
	var errs []error
	seen := make(map[string]bool)
	admins := make([]model.Admin, 0, len(entries))

	for i, e := range entries {
		dept, ok := model.ParseDepartment(e.Department)
		if !ok {
			errs = append(errs, fmt.Errorf("admin %d: unknown department %q", i+1, e.Department))
		}
		email := model.NormalizeEmail(e.Email)
		switch {
		case email == "":
			errs = append(errs, fmt.Errorf("admin %d: email is required", i+1))
		case seen[email]:
			errs = append(errs, fmt.Errorf("admin %d: duplicate email %s", i+1, email))
		}
		seen[email] = true
		if e.Password == "" {
			errs = append(errs, fmt.Errorf("admin %d: password is required", i+1))
		}

		name := e.Name
		if name == "" {
			name = string(dept) + " Admin"
		}
		admins = append(admins, model.Admin{Name: name, Department: dept, Email: email})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return admins, nil
}
