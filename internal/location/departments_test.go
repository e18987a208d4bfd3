package location

import "testing"

func TestDepartmentCode(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Paris", "75", true},
		{"Corse-du-Sud", "2A", true},
		{"Côte-d'Or", "21", true},
		{"La Réunion", "974", true},
		{"paris", "", false},
		{"Île-de-France", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DepartmentCode(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DepartmentCode(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDepartmentCatalog_Bidirectional(t *testing.T) {
	all := Departments()
	if len(all) != 101 {
		t.Errorf("catalog has %d entries, want 101", len(all))
	}

	for _, d := range all {
		name, ok := DepartmentName(d.Code)
		if !ok || name != d.Name {
			t.Errorf("DepartmentName(%q) = %q, %v", d.Code, name, ok)
		}
		code, ok := DepartmentCode(d.Name)
		if !ok || code != d.Code {
			t.Errorf("DepartmentCode(%q) = %q, %v", d.Name, code, ok)
		}
	}

	all[0].Name = "changed"
	if name, _ := DepartmentName("01"); name != "Ain" {
		t.Error("Departments() must return a copy")
	}
}
