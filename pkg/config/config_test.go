package config

import (
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				App:    AppConfig{Name: "test-service"},
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{Algorithm: "bfw", MaxIterations: 100, StepsBelowNeededToTerminate: 1},
			},
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: Config{
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{Algorithm: "bfw", MaxIterations: 100, StepsBelowNeededToTerminate: 1},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "invalid"},
				Solver: SolverConfig{Algorithm: "bfw", MaxIterations: 100, StepsBelowNeededToTerminate: 1},
			},
			wantErr: true,
		},
		{
			name: "valid debug level",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "debug"},
				Solver: SolverConfig{Algorithm: "fw", MaxIterations: 100, StepsBelowNeededToTerminate: 1},
			},
			wantErr: false,
		},
		{
			name: "invalid algorithm",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{Algorithm: "dijkstra", MaxIterations: 100, StepsBelowNeededToTerminate: 1},
			},
			wantErr: true,
		},
		{
			name: "zero max iterations",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{Algorithm: "msa", MaxIterations: 0, StepsBelowNeededToTerminate: 1},
			},
			wantErr: true,
		},
		{
			name: "negative rgap target",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{Algorithm: "msa", MaxIterations: 10, RelativeGapTarget: -1, StepsBelowNeededToTerminate: 1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}
