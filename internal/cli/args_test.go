package cli

import (
	"testing"
)

func TestCheckinRequiresPass(t *testing.T) {
	_, err := executeCommand("checkin")
	if err == nil {
		t.Fatal("expected error when no pass provided")
	}
}

func TestCheckoutRequiresID(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"checkout"}},
		{"two args", []string{"checkout", "v-1", "v-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLimitsSetRequiresTwoArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"limits", "set"}},
		{"type only", []string{"limits", "set", "guest"}},
		{"three args", []string{"limits", "set", "guest", "30", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLimitsStepRejectsNonNumeric(t *testing.T) {
	_, err := executeCommand("limits", "step", "guest", "up")
	if err == nil {
		t.Fatal("expected error for non-numeric step")
	}
}

func TestLimitsPresetRejectsNonNumeric(t *testing.T) {
	_, err := executeCommand("limits", "preset", "guest", "abc")
	if err == nil {
		t.Fatal("expected error for non-numeric preset")
	}
}

func TestLimitsResetAcceptsAtMostOneType(t *testing.T) {
	_, err := executeCommand("limits", "reset", "guest", "staff")
	if err == nil {
		t.Fatal("expected error for two types")
	}
}

func TestOverstayRejectsArgs(t *testing.T) {
	_, err := executeCommand("overstay", "extra")
	if err == nil {
		t.Fatal("expected error for extra argument")
	}
}

func TestVisitorsRejectsInvalidStatus(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := executeCommand("visitors", "--status", "lost", "--community", "c-1")
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestScansRejectsNegativeLimit(t *testing.T) {
	_, err := executeCommand("scans", "--limit=-1", "--db", t.TempDir()+"/gk.db")
	if err == nil {
		t.Fatal("expected error for negative limit")
	}
}

func TestCommandsNeedCommunity(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"overstay", []string{"overstay"}},
		{"visitors", []string{"visitors"}},
		{"limits show", []string{"limits", "show"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("GK_COMMUNITY_ID", "")
			args := append(tt.args, "--db", t.TempDir()+"/gk.db")
			_, err := executeCommand(args...)
			if err == nil {
				t.Fatal("expected error without a community")
			}
		})
	}
}
