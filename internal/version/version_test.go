package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	defer func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	}()

	tests := []struct {
		name    string
		version string
		commit  string
		built   string
		want    string
	}{
		{name: "defaults", version: "dev", commit: "unknown", built: "unknown", want: "dev (unknown) built unknown"},
		{name: "release", version: "1.2.3", commit: "abc1234", built: "2024-01-15T10:00:00Z", want: "1.2.3 (abc1234) built 2024-01-15T10:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, BuildTime = tt.version, tt.commit, tt.built
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
